package generation

import "context"

// Lifecycle phases reported to the progress sink. Preparation and submission
// occupy the start of the 0-100 scale, polling the middle band, download and
// assembly the end.
const (
	PhasePreparing   = "preparing"
	PhaseSubmitting  = "submitting"
	PhaseGenerating  = "generating"
	PhaseDownloading = "downloading"
	PhaseComplete    = "complete"
)

// Percent anchors for the lifecycle phases. The polling band runs from
// pctPollStart to pctPollEnd; 100 is reached only after the artifact
// download succeeds.
const (
	pctPreparing   = 5
	pctSubmitting  = 10
	pctPollStart   = 15
	pctPollEnd     = 85
	pctDownloading = 90
	pctComplete    = 100
)

// ProgressEvent is one progress update for a job. Purely informational:
// it never affects control flow.
type ProgressEvent struct {
	// Percent is the overall completion percentage, 0-100, non-decreasing
	// within one job.
	Percent int
	// Phase is the lifecycle phase label.
	Phase string
	// Message is a human-readable description of the current step.
	Message string
}

// ProgressReporter receives progress updates for a job. It is an external
// collaborator (UI, telemetry): the orchestrator fires updates at each phase
// transition and swallows reporter errors, so a broken sink never fails a job.
type ProgressReporter interface {
	Report(ctx context.Context, jobID string, event ProgressEvent) error
}

// NopReporter is a ProgressReporter that discards all updates.
type NopReporter struct{}

// Report discards the update.
func (NopReporter) Report(context.Context, string, ProgressEvent) error {
	return nil
}

// pollingPercent maps an attempt number into the polling band of the
// progress scale. Monotonically non-decreasing in the attempt number and
// capped at the end of the band.
func pollingPercent(attempt, maxAttempts int) int {
	if maxAttempts <= 0 {
		return pctPollStart
	}
	pct := pctPollStart + (pctPollEnd-pctPollStart)*attempt/maxAttempts
	if pct > pctPollEnd {
		return pctPollEnd
	}
	return pct
}
