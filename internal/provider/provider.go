// Package provider defines the capability interface every video generation
// backend must implement, along with the generic request/outcome types shared
// by all adapters. Each backend (Kling, Seedance, Veo, MiniMax) exposes a
// "submit task, then poll" API with its own status vocabulary; adapters
// translate between that vocabulary and the types in this package.
package provider

import (
	"context"
	"time"
)

// State represents the generic state of a generation task.
type State string

// Task states common across providers.
const (
	StatePending   State = "PENDING"   // Task submitted but not yet finished
	StateSucceeded State = "SUCCEEDED" // Task finished with a retrievable artifact
	StateFailed    State = "FAILED"    // Task failed or was cancelled by the provider
)

// IsTerminal returns true if the state represents a final outcome.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Request contains the normalized parameters for a generation job.
// It is immutable once built: adapters read it but never modify it.
type Request struct {
	// Model is the caller-facing model identifier (registry key).
	Model string
	// Prompt is the text prompt for generation.
	Prompt string
	// Images holds source image references in caller order.
	// Adapters use only the first entry. By the time a request reaches an
	// adapter, each entry is an embedded data URI.
	Images []string
	// DurationSec is the requested clip duration in seconds, already clamped
	// into the adapter's limits.
	DurationSec int
	// AspectRatio is an optional hint such as "16:9".
	AspectRatio string
	// Resolution is an optional hint such as "720p".
	Resolution string
	// Audio requests an audio track where the backend supports it.
	Audio bool
}

// FirstImage returns the first source image reference, or "" if none.
func (r Request) FirstImage() string {
	if len(r.Images) == 0 {
		return ""
	}
	return r.Images[0]
}

// TaskHandle identifies a submitted task for the lifetime of one job.
// The ID is provider-assigned and opaque; Kind carries whatever extra routing
// the provider needs to poll the task (e.g. Kling's text2video vs image2video
// status path). A handle is never reused across jobs.
type TaskHandle struct {
	ID   string
	Kind string
}

// PollOutcome is the result of a single status check.
// Exactly one interpretation applies: Pending (not finished), Succeeded
// (Artifact set, usage in DurationSec), or Failed (Reason set).
type PollOutcome struct {
	// State is the generic task state.
	State State
	// Artifact is the locator for the finished media, set on success.
	// Typically a URL; MiniMax returns a file id resolved during fetch.
	Artifact string
	// DurationSec is the provider-reported actual duration in seconds.
	// Zero when the provider does not report usage.
	DurationSec float64
	// Reason is the human-readable failure reason, set when State is Failed.
	Reason string
}

// Usage is the normalized usage record for a finished job.
type Usage struct {
	// VideoSeconds is the billable video duration.
	VideoSeconds float64
	// AudioSeconds is the billable audio duration: equal to VideoSeconds when
	// an audio track was requested and produced, otherwise zero.
	AudioSeconds float64
}

// Limits describes per-provider request bounds and polling cadence.
// MaxPollAttempts times PollInterval approximates the provider's documented
// worst-case completion time.
type Limits struct {
	// MinDurationSec and MaxDurationSec bound the requested clip duration.
	MinDurationSec int
	MaxDurationSec int
	// PollInterval is the fixed delay between status checks.
	PollInterval time.Duration
	// MaxPollAttempts is the hard ceiling on status checks per job.
	MaxPollAttempts int
}

// ClampDuration clamps a requested duration into the inclusive
// [MinDurationSec, MaxDurationSec] range. Out-of-range values are silently
// clamped, never rejected.
func (l Limits) ClampDuration(seconds int) int {
	if seconds < l.MinDurationSec {
		return l.MinDurationSec
	}
	if seconds > l.MaxDurationSec {
		return l.MaxDurationSec
	}
	return seconds
}

// Adapter is the uniform contract every backend implements.
//
// Submit translates a Request into a provider submission and returns a task
// handle. PollOnce performs exactly one status round trip; it must not sleep
// or retry (pacing belongs to the poll loop). FetchArtifact downloads the
// finished media for a locator from a succeeded outcome. NormalizeUsage
// extracts the actual-vs-requested bookkeeping for a terminal outcome.
//
// Adapters may log but must not mutate shared state; every call is
// independent given the same handle or outcome.
type Adapter interface {
	// Name returns the backend name for logging and errors.
	Name() string

	// Limits returns the request bounds and polling cadence for this backend.
	Limits() Limits

	// Submit sends the generation request and returns a task handle.
	Submit(ctx context.Context, req Request) (TaskHandle, error)

	// PollOnce performs a single status check for the task.
	PollOnce(ctx context.Context, handle TaskHandle) (PollOutcome, error)

	// FetchArtifact downloads the finished media referenced by the locator.
	FetchArtifact(ctx context.Context, locator string) ([]byte, error)

	// NormalizeUsage builds the usage record for a terminal outcome.
	NormalizeUsage(outcome PollOutcome, req Request) Usage
}
