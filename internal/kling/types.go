// Package kling provides an HTTP client for the Kling video generation
// task API (text2video and image2video).
package kling

// TaskKind selects the Kling task endpoint.
// Kling routes both submission and status lookup by kind, so the kind must
// travel with the task id for the lifetime of a job.
type TaskKind string

// Kling task kinds.
const (
	KindText2Video  TaskKind = "text2video"
	KindImage2Video TaskKind = "image2video"
)

// Status represents the status of a Kling task.
type Status string

// Kling task statuses aligned with the Kling API.
const (
	StatusSubmitted  Status = "submitted"
	StatusProcessing Status = "processing"
	StatusSucceed    Status = "succeed"
	StatusFailed     Status = "failed"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusSucceed || s == StatusFailed
}

// TaskRequest contains the parameters for creating a Kling task.
type TaskRequest struct {
	// ModelName is the Kling model variant, e.g. "kling-v2-1".
	ModelName string
	// Prompt is the generation prompt.
	Prompt string
	// Image is the source image for image2video, as a base64 payload or URL.
	Image string
	// DurationSec is the clip duration; Kling accepts only 5 or 10.
	DurationSec int
	// AspectRatio is e.g. "16:9", "9:16" or "1:1".
	AspectRatio string
}

// createTaskRequest is the JSON body for Kling's task creation endpoints.
type createTaskRequest struct {
	ModelName   string `json:"model_name"`
	Prompt      string `json:"prompt"`
	Image       string `json:"image,omitempty"`
	Duration    string `json:"duration"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// envelope is the common Kling response wrapper.
// Code is zero on success; non-zero codes carry a message.
type envelope struct {
	Code      int      `json:"code"`
	Message   string   `json:"message"`
	RequestID string   `json:"request_id"`
	Data      taskData `json:"data"`
}

// taskData is the payload of a task creation or status response.
type taskData struct {
	TaskID        string      `json:"task_id"`
	TaskStatus    string      `json:"task_status"`
	TaskStatusMsg string      `json:"task_status_msg"`
	TaskResult    *taskResult `json:"task_result,omitempty"`
}

// taskResult carries the finished videos of a succeeded task.
type taskResult struct {
	Videos []taskVideo `json:"videos"`
}

// taskVideo is a single finished video entry.
// Duration is a decimal string such as "5.1".
type taskVideo struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

// PollResult contains the result of polling a task's status.
type PollResult struct {
	Status      Status
	VideoURL    string  // URL of the finished video (only when succeeded)
	DurationSec float64 // Actual duration reported by Kling (0 if absent)
	Error       string  // Failure message (only when failed)
}
