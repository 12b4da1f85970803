// Package server provides the HTTP surface for video generation.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// GenerateRequest is the HTTP request body for generating a video, shared
// by the synchronous and asynchronous endpoints.
type GenerateRequest struct {
	// Model is the generation model to use, e.g. "kling" or "veo".
	Model string `json:"model" validate:"required"`
	// Prompt is the text description of the video to generate.
	Prompt string `json:"prompt" validate:"required_without=Image,max=4000"`
	// Image is an optional source image for image-to-video, either an
	// http(s) URL or a data URI.
	Image string `json:"image,omitempty" validate:"omitempty,max=67108864"`
	// Duration is the requested clip length in seconds. Providers clamp
	// it to their supported range.
	Duration int `json:"duration,omitempty" validate:"omitempty,min=1,max=60"`
	// AspectRatio is the requested aspect ratio, e.g. "16:9".
	AspectRatio string `json:"aspect_ratio,omitempty" validate:"omitempty,oneof=16:9 9:16 1:1 4:3 3:4 21:9"`
	// Resolution is the requested output resolution, e.g. "720p".
	Resolution string `json:"resolution,omitempty" validate:"omitempty,oneof=480p 720p 1080p"`
	// Audio requests generated audio where the model supports it.
	Audio bool `json:"audio,omitempty"`
}

// CreateJobResponse is the HTTP response after creating an async job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Model is the model the job was created with.
	Model string `json:"model"`
	// Status is the current job status.
	Status string `json:"status"`
	// Progress is the percentage of completion (0-100).
	Progress int `json:"progress"`
	// Phase describes what the job is currently doing.
	Phase string `json:"phase,omitempty"`
	// Message is a human-readable progress or status message.
	Message string `json:"message,omitempty"`
	// Error contains the failure message if the job failed or timed out.
	Error string `json:"error,omitempty"`
	// VideoURL is the S3 URL of the finished video, when S3 delivery is on.
	VideoURL string `json:"video_url,omitempty"`
	// DurationSec is the length of the finished video in seconds.
	DurationSec float64 `json:"duration_sec,omitempty"`
	// VideoSeconds is the billable video duration.
	VideoSeconds float64 `json:"video_seconds,omitempty"`
	// AudioSeconds is the billable audio duration, zero when no audio
	// was generated.
	AudioSeconds float64 `json:"audio_seconds,omitempty"`
}

// ModelsResponse lists the generation models this deployment serves.
type ModelsResponse struct {
	// Models is the sorted list of registered model names.
	Models []string `json:"models"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
