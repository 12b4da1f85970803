// Package seedance provides an HTTP client for the Seedance content
// generation task API (ModelArk-style).
package seedance

import "fmt"

// Status represents the status of a Seedance generation task.
type Status string

// Seedance task statuses aligned with the API.
const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// TaskRequest contains the parameters for creating a Seedance task.
// Duration and resolution travel as text commands appended to the prompt,
// which is how the API expects generation parameters.
type TaskRequest struct {
	// Model is the Seedance model id, e.g. "seedance-1-0-pro".
	Model string
	// Prompt is the generation prompt.
	Prompt string
	// ImageURL is an optional first-frame image (URL or data URI).
	ImageURL string
	// DurationSec is the clip duration in seconds (3-12).
	DurationSec int
	// Resolution is e.g. "480p", "720p" or "1080p".
	Resolution string
	// CameraFixed pins the camera when true.
	CameraFixed bool
}

// promptText renders the prompt with the trailing parameter commands.
func (r TaskRequest) promptText() string {
	text := fmt.Sprintf("%s --duration %d", r.Prompt, r.DurationSec)
	if r.Resolution != "" {
		text += " --resolution " + r.Resolution
	}
	if r.CameraFixed {
		text += " --camerafixed true"
	}
	return text
}

// contentPart is one entry of the multimodal content array.
type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
	Role     string    `json:"role,omitempty"`
}

// imageURL wraps an image reference in the content array.
type imageURL struct {
	URL string `json:"url"`
}

// createTaskRequest is the JSON body for task creation.
type createTaskRequest struct {
	Model   string        `json:"model"`
	Content []contentPart `json:"content"`
}

// createTaskResponse is the response from task creation.
type createTaskResponse struct {
	ID string `json:"id"`
}

// taskStatusResponse is the response from the task status endpoint.
type taskStatusResponse struct {
	ID      string       `json:"id"`
	Status  string       `json:"status"`
	Content *taskContent `json:"content,omitempty"`
	Usage   *taskUsage   `json:"usage,omitempty"`
	Error   *taskError   `json:"error,omitempty"`
}

// taskContent carries the finished video of a succeeded task.
type taskContent struct {
	VideoURL string `json:"video_url"`
}

// taskUsage is the token usage block of a status response.
type taskUsage struct {
	CompletionTokens int `json:"completion_tokens"`
}

// taskError is the error block of a failed task.
type taskError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PollResult contains the result of polling a task's status.
type PollResult struct {
	Status   Status
	VideoURL string // URL of the finished video (only when succeeded)
	Error    string // Failure message (only when failed or cancelled)
}
