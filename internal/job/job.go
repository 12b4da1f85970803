// Package job provides the Job aggregate for tracking asynchronous video
// generation jobs, the repository port for looking them up, and the service
// that runs them through the orchestrator.
package job

import (
	"errors"
	"sync"
	"time"

	"github.com/Stars1233/pollinations/internal/job/id"
)

// Status represents the current state of a Job.
type Status string

const (
	// StatusSubmitted indicates the job was accepted but generation has not
	// started polling yet.
	StatusSubmitted Status = "SUBMITTED"
	// StatusPolling indicates the remote task is running and being polled.
	StatusPolling Status = "POLLING"
	// StatusSucceeded indicates the artifact was generated and downloaded.
	StatusSucceeded Status = "SUCCEEDED"
	// StatusFailed indicates the job failed with an error.
	StatusFailed Status = "FAILED"
	// StatusTimedOut indicates the poll attempt ceiling was exhausted.
	StatusTimedOut Status = "TIMED_OUT"
)

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// validTransitions defines which state transitions are allowed.
// Terminal states have no outgoing transitions: once a job is terminal it is
// never polled or mutated again.
var validTransitions = map[Status][]Status{
	StatusSubmitted: {StatusPolling, StatusFailed, StatusTimedOut},
	StatusPolling:   {StatusSucceeded, StatusFailed, StatusTimedOut},
	StatusSucceeded: {},
	StatusFailed:    {},
	StatusTimedOut:  {},
}

// canTransition checks if a transition from one status to another is valid.
func canTransition(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Job represents one asynchronous generation job.
type Job struct {
	mu sync.RWMutex

	// ID is the unique identifier for this job.
	ID string
	// Model is the caller-facing model identifier.
	Model string
	// Prompt is the generation prompt.
	Prompt string
	// Status is the current job state.
	Status Status
	// Progress is the percentage of completion (0-100).
	Progress int
	// Phase is the lifecycle phase label of the latest progress update.
	Phase string
	// Message is the human-readable message of the latest progress update.
	Message string
	// Error contains any error message if the job failed.
	Error string
	// StatusCode is the HTTP-equivalent code of the failure, if any.
	StatusCode int
	// ArtifactPath is the local path of the downloaded artifact.
	ArtifactPath string
	// ArtifactURL is the public URL of the artifact when pushed to S3.
	ArtifactURL string
	// MIMEType is the media type of the artifact.
	MIMEType string
	// DurationSec is the actual duration of the generated clip.
	DurationSec float64
	// VideoSeconds and AudioSeconds are the normalized usage record.
	VideoSeconds float64
	AudioSeconds float64
	// CreatedAt is when the job was created.
	CreatedAt time.Time
	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
	// StartedAt is when polling started.
	StartedAt time.Time
	// CompletedAt is when the job reached a terminal state.
	CompletedAt time.Time
}

// New creates a new Job with a generated ID and initial SUBMITTED status.
func New(model, prompt string) *Job {
	now := time.Now()
	return &Job{
		ID:        id.Generate(),
		Model:     model,
		Prompt:    prompt,
		Status:    StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo attempts to change the job status to the specified state.
// Returns ErrInvalidTransition if the transition is not allowed.
func (j *Job) TransitionTo(status Status) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !canTransition(j.Status, status) {
		return ErrInvalidTransition
	}

	j.Status = status
	j.UpdatedAt = time.Now()

	switch status {
	case StatusPolling:
		j.StartedAt = j.UpdatedAt
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		j.CompletedAt = j.UpdatedAt
	}

	return nil
}

// Start transitions the job from SUBMITTED to POLLING.
func (j *Job) Start() error {
	return j.TransitionTo(StatusPolling)
}

// Succeed transitions the job to SUCCEEDED.
func (j *Job) Succeed() error {
	return j.TransitionTo(StatusSucceeded)
}

// Fail transitions the job to FAILED with an error message and the
// HTTP-equivalent status code of the failure.
func (j *Job) Fail(errMsg string, statusCode int) error {
	j.mu.Lock()
	j.Error = errMsg
	j.StatusCode = statusCode
	j.mu.Unlock()
	return j.TransitionTo(StatusFailed)
}

// Timeout transitions the job to TIMED_OUT with the failure detail.
func (j *Job) Timeout(errMsg string, statusCode int) error {
	j.mu.Lock()
	j.Error = errMsg
	j.StatusCode = statusCode
	j.mu.Unlock()
	return j.TransitionTo(StatusTimedOut)
}

// GetStatus returns the current job status (thread-safe).
func (j *Job) GetStatus() Status {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// UpdateProgress records a progress update. Regressions are ignored so that
// the recorded percentage is non-decreasing within the job.
func (j *Job) UpdateProgress(percent int, phase, message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if percent < j.Progress {
		percent = j.Progress
	}
	if percent > 100 {
		percent = 100
	}
	j.Progress = percent
	j.Phase = phase
	j.Message = message
	j.UpdatedAt = time.Now()
}

// SetResult records the assembled result of a finished job.
func (j *Job) SetResult(artifactPath, artifactURL, mimeType string, durationSec, videoSec, audioSec float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ArtifactPath = artifactPath
	j.ArtifactURL = artifactURL
	j.MIMEType = mimeType
	j.DurationSec = durationSec
	j.VideoSeconds = videoSec
	j.AudioSeconds = audioSec
	j.UpdatedAt = time.Now()
}

// IsTerminal returns true if the job is in a terminal state.
func (j *Job) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status == StatusSucceeded ||
		j.Status == StatusFailed ||
		j.Status == StatusTimedOut
}

// Clone creates a deep copy of the job for safe reads.
func (j *Job) Clone() *Job {
	j.mu.RLock()
	defer j.mu.RUnlock()

	return &Job{
		ID:           j.ID,
		Model:        j.Model,
		Prompt:       j.Prompt,
		Status:       j.Status,
		Progress:     j.Progress,
		Phase:        j.Phase,
		Message:      j.Message,
		Error:        j.Error,
		StatusCode:   j.StatusCode,
		ArtifactPath: j.ArtifactPath,
		ArtifactURL:  j.ArtifactURL,
		MIMEType:     j.MIMEType,
		DurationSec:  j.DurationSec,
		VideoSeconds: j.VideoSeconds,
		AudioSeconds: j.AudioSeconds,
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
		StartedAt:    j.StartedAt,
		CompletedAt:  j.CompletedAt,
	}
}
