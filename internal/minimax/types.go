// Package minimax provides an HTTP client for the MiniMax (Hailuo) video
// generation API. Artifact retrieval is two-step: polling yields a file id,
// which must be resolved to a download URL via the files endpoint.
package minimax

// Status represents the status of a MiniMax generation task.
type Status string

// MiniMax task statuses aligned with the API.
const (
	StatusQueueing   Status = "Queueing"
	StatusPreparing  Status = "Preparing"
	StatusProcessing Status = "Processing"
	StatusSuccess    Status = "Success"
	StatusFail       Status = "Fail"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFail
}

// TaskRequest contains the parameters for creating a MiniMax task.
type TaskRequest struct {
	// Model is the MiniMax model id, e.g. "MiniMax-Hailuo-02".
	Model string
	// Prompt is the generation prompt.
	Prompt string
	// FirstFrameImage is an optional source image (URL or data URI).
	FirstFrameImage string
	// DurationSec is the clip duration; MiniMax accepts 6 or 10.
	DurationSec int
	// Resolution is e.g. "768P" or "1080P".
	Resolution string
}

// baseResp is the status envelope present on every MiniMax response.
// StatusCode zero means success; anything else carries a message.
type baseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

// createTaskRequest is the JSON body for video_generation.
type createTaskRequest struct {
	Model           string `json:"model"`
	Prompt          string `json:"prompt"`
	FirstFrameImage string `json:"first_frame_image,omitempty"`
	Duration        int    `json:"duration"`
	Resolution      string `json:"resolution,omitempty"`
}

// createTaskResponse is the response from video_generation.
type createTaskResponse struct {
	TaskID   string   `json:"task_id"`
	BaseResp baseResp `json:"base_resp"`
}

// queryTaskResponse is the response from query/video_generation.
type queryTaskResponse struct {
	TaskID   string   `json:"task_id"`
	Status   string   `json:"status"`
	FileID   string   `json:"file_id"`
	BaseResp baseResp `json:"base_resp"`
}

// retrieveFileResponse is the response from files/retrieve.
type retrieveFileResponse struct {
	File     fileInfo `json:"file"`
	BaseResp baseResp `json:"base_resp"`
}

// fileInfo describes a stored output file.
type fileInfo struct {
	FileID      int64  `json:"file_id"`
	DownloadURL string `json:"download_url"`
}

// PollResult contains the result of polling a task's status.
type PollResult struct {
	Status Status
	FileID string // File id of the finished video (only when Success)
	Error  string // Failure message (only when Fail)
}
