package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/Stars1233/pollinations/internal/seedance"
)

// DefaultSeedanceLimits is the default request and polling configuration
// for Seedance.
var DefaultSeedanceLimits = Limits{
	MinDurationSec:  3,
	MaxDurationSec:  12,
	PollInterval:    5 * time.Second,
	MaxPollAttempts: 60,
}

// SeedanceAdapter adapts the Seedance client to the Adapter interface.
type SeedanceAdapter struct {
	client seedance.Client
	model  string
	limits Limits
}

// NewSeedanceAdapter creates a new Seedance adapter for the given model id.
func NewSeedanceAdapter(client seedance.Client, model string) *SeedanceAdapter {
	return &SeedanceAdapter{
		client: client,
		model:  model,
		limits: DefaultSeedanceLimits,
	}
}

// WithLimits overrides the default limits, keeping zero fields at defaults.
func (a *SeedanceAdapter) WithLimits(l Limits) *SeedanceAdapter {
	a.limits = mergeLimits(a.limits, l)
	return a
}

// Name returns the backend name.
func (a *SeedanceAdapter) Name() string { return "seedance" }

// Limits returns the request bounds and polling cadence.
func (a *SeedanceAdapter) Limits() Limits { return a.limits }

// Submit sends the generation request to Seedance and returns a task handle.
// Seedance accepts data URIs directly as first-frame images.
func (a *SeedanceAdapter) Submit(ctx context.Context, req Request) (TaskHandle, error) {
	taskID, err := a.client.CreateTask(ctx, seedance.TaskRequest{
		Model:       a.model,
		Prompt:      req.Prompt,
		ImageURL:    req.FirstImage(),
		DurationSec: req.DurationSec,
		Resolution:  req.Resolution,
	})
	if err != nil {
		return TaskHandle{}, fmt.Errorf("seedance adapter submit: %w", err)
	}
	return TaskHandle{ID: taskID}, nil
}

// PollOnce performs a single status check for the task.
func (a *SeedanceAdapter) PollOnce(ctx context.Context, handle TaskHandle) (PollOutcome, error) {
	result, err := a.client.GetTask(ctx, handle.ID)
	if err != nil {
		return PollOutcome{}, fmt.Errorf("seedance adapter poll: %w", err)
	}

	switch result.Status {
	case seedance.StatusSucceeded:
		return PollOutcome{State: StateSucceeded, Artifact: result.VideoURL}, nil
	case seedance.StatusFailed, seedance.StatusCancelled:
		return PollOutcome{State: StateFailed, Reason: result.Error}, nil
	default:
		return PollOutcome{State: StatePending}, nil
	}
}

// FetchArtifact downloads the finished video from the result URL.
func (a *SeedanceAdapter) FetchArtifact(ctx context.Context, locator string) ([]byte, error) {
	data, err := a.client.Download(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("seedance adapter download: %w", err)
	}
	return data, nil
}

// NormalizeUsage builds the usage record. Seedance does not report actual
// duration on the status payload, so the requested duration stands in.
func (a *SeedanceAdapter) NormalizeUsage(outcome PollOutcome, req Request) Usage {
	seconds := outcome.DurationSec
	if seconds == 0 {
		seconds = float64(req.DurationSec)
	}
	return Usage{VideoSeconds: seconds}
}

// Compile-time check that SeedanceAdapter implements Adapter.
var _ Adapter = (*SeedanceAdapter)(nil)
