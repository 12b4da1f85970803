package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/Stars1233/pollinations/internal/minimax"
)

// DefaultMiniMaxLimits is the default request and polling configuration
// for MiniMax.
var DefaultMiniMaxLimits = Limits{
	MinDurationSec:  6,
	MaxDurationSec:  10,
	PollInterval:    10 * time.Second,
	MaxPollAttempts: 40,
}

// MiniMaxAdapter adapts the MiniMax client to the Adapter interface.
// The artifact locator is a file id, resolved to a download URL during
// FetchArtifact.
type MiniMaxAdapter struct {
	client minimax.Client
	model  string
	limits Limits
}

// NewMiniMaxAdapter creates a new MiniMax adapter for the given model id.
func NewMiniMaxAdapter(client minimax.Client, model string) *MiniMaxAdapter {
	return &MiniMaxAdapter{
		client: client,
		model:  model,
		limits: DefaultMiniMaxLimits,
	}
}

// WithLimits overrides the default limits, keeping zero fields at defaults.
func (a *MiniMaxAdapter) WithLimits(l Limits) *MiniMaxAdapter {
	a.limits = mergeLimits(a.limits, l)
	return a
}

// Name returns the backend name.
func (a *MiniMaxAdapter) Name() string { return "minimax" }

// Limits returns the request bounds and polling cadence.
func (a *MiniMaxAdapter) Limits() Limits { return a.limits }

// Submit sends the generation request to MiniMax and returns a task handle.
// MiniMax accepts data URIs directly as first-frame images.
func (a *MiniMaxAdapter) Submit(ctx context.Context, req Request) (TaskHandle, error) {
	taskID, err := a.client.CreateTask(ctx, minimax.TaskRequest{
		Model:           a.model,
		Prompt:          req.Prompt,
		FirstFrameImage: req.FirstImage(),
		DurationSec:     snapMiniMaxDuration(req.DurationSec),
		Resolution:      req.Resolution,
	})
	if err != nil {
		return TaskHandle{}, fmt.Errorf("minimax adapter submit: %w", err)
	}
	return TaskHandle{ID: taskID}, nil
}

// PollOnce performs a single status check for the task.
func (a *MiniMaxAdapter) PollOnce(ctx context.Context, handle TaskHandle) (PollOutcome, error) {
	result, err := a.client.GetTask(ctx, handle.ID)
	if err != nil {
		return PollOutcome{}, fmt.Errorf("minimax adapter poll: %w", err)
	}

	switch result.Status {
	case minimax.StatusSuccess:
		return PollOutcome{State: StateSucceeded, Artifact: result.FileID}, nil
	case minimax.StatusFail:
		return PollOutcome{State: StateFailed, Reason: result.Error}, nil
	default:
		return PollOutcome{State: StatePending}, nil
	}
}

// FetchArtifact resolves the file id to a download URL and downloads it.
func (a *MiniMaxAdapter) FetchArtifact(ctx context.Context, locator string) ([]byte, error) {
	downloadURL, err := a.client.RetrieveFile(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("minimax adapter retrieve file: %w", err)
	}
	data, err := a.client.Download(ctx, downloadURL)
	if err != nil {
		return nil, fmt.Errorf("minimax adapter download: %w", err)
	}
	return data, nil
}

// NormalizeUsage builds the usage record. MiniMax outputs have no audio track.
func (a *MiniMaxAdapter) NormalizeUsage(outcome PollOutcome, req Request) Usage {
	seconds := outcome.DurationSec
	if seconds == 0 {
		seconds = float64(snapMiniMaxDuration(req.DurationSec))
	}
	return Usage{VideoSeconds: seconds}
}

// snapMiniMaxDuration snaps a clamped duration to the nearest value MiniMax
// accepts (6 or 10).
func snapMiniMaxDuration(seconds int) int {
	if seconds <= 8 {
		return 6
	}
	return 10
}

// Compile-time check that MiniMaxAdapter implements Adapter.
var _ Adapter = (*MiniMaxAdapter)(nil)
