// Package generation orchestrates long-running, provider-hosted video
// generation jobs. It presents one uniform lifecycle (submit, track
// progress, retrieve result, classify failure) over heterogeneous backends
// that each expose a "submit task, then poll for completion" API.
//
// One orchestrator serves all jobs, but every job runs as an independent
// instance: one outstanding network call at a time, its own task handle and
// polling cadence, no state shared between jobs.
package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Stars1233/pollinations/internal/media"
	"github.com/Stars1233/pollinations/internal/provider"
)

// Orchestrator runs generation jobs end to end: request normalization,
// submission, bounded polling, artifact retrieval and result assembly.
type Orchestrator struct {
	registry *provider.Registry
	poller   *Poller
	reporter ProgressReporter
	fetcher  *media.Fetcher
	clock    Clock
	logger   *slog.Logger
	override PollConfig
}

// Option is a function that configures an Orchestrator.
type Option func(*Orchestrator)

// WithReporter sets the progress sink.
func WithReporter(r ProgressReporter) Option {
	return func(o *Orchestrator) {
		o.reporter = r
	}
}

// WithClock sets the poll loop clock.
func WithClock(c Clock) Option {
	return func(o *Orchestrator) {
		o.clock = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithImageFetcher sets the source image fetcher.
func WithImageFetcher(f *media.Fetcher) Option {
	return func(o *Orchestrator) {
		o.fetcher = f
	}
}

// WithPollOverride overrides the per-adapter polling cadence for all jobs.
// Zero fields keep the adapter's own limits.
func WithPollOverride(cfg PollConfig) Option {
	return func(o *Orchestrator) {
		o.override = cfg
	}
}

// NewOrchestrator creates an Orchestrator over the given adapter registry.
func NewOrchestrator(registry *provider.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		reporter: NopReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.fetcher == nil {
		o.fetcher = media.NewFetcher(nil)
	}
	o.poller = NewPoller(o.clock, o.logger)
	return o
}

// Generate runs one job to completion and returns the assembled result.
// The caller always receives either a complete Result or a single *Error
// carrying an HTTP-equivalent status code and a human-readable message.
func (o *Orchestrator) Generate(ctx context.Context, jobID string, req provider.Request) (*Result, error) {
	if req.Model == "" {
		return nil, NewValidationError("model is required")
	}
	if req.Prompt == "" && len(req.Images) == 0 {
		return nil, NewValidationError("prompt or source image is required")
	}

	adapter, err := o.registry.Resolve(req.Model)
	if err != nil {
		return nil, NewValidationError("unknown model %q", req.Model)
	}

	o.report(ctx, jobID, ProgressEvent{
		Percent: pctPreparing,
		Phase:   PhasePreparing,
		Message: "normalizing request",
	})

	req, err = o.normalize(ctx, adapter, req)
	if err != nil {
		return nil, err
	}

	o.report(ctx, jobID, ProgressEvent{
		Percent: pctSubmitting,
		Phase:   PhaseSubmitting,
		Message: fmt.Sprintf("submitting to %s", adapter.Name()),
	})

	handle, err := adapter.Submit(ctx, req)
	if err != nil {
		return nil, NewSubmissionError(err)
	}

	o.logger.Info("job submitted",
		slog.String("job_id", jobID),
		slog.String("provider", adapter.Name()),
		slog.String("task_id", handle.ID),
		slog.Int("duration_sec", req.DurationSec),
	)

	cfg := o.pollConfig(adapter.Limits())
	outcome, err := o.poller.Run(ctx, adapter, handle, cfg, func(attempt int) {
		o.report(ctx, jobID, ProgressEvent{
			Percent: pollingPercent(attempt, cfg.MaxAttempts),
			Phase:   PhaseGenerating,
			Message: fmt.Sprintf("waiting for %s (attempt %d/%d)", adapter.Name(), attempt, cfg.MaxAttempts),
		})
	})
	if err != nil {
		return nil, err
	}

	if outcome.Artifact == "" {
		return nil, NewMissingArtifactError(adapter.Name())
	}

	o.report(ctx, jobID, ProgressEvent{
		Percent: pctDownloading,
		Phase:   PhaseDownloading,
		Message: "downloading artifact",
	})

	data, err := adapter.FetchArtifact(ctx, outcome.Artifact)
	if err != nil {
		return nil, NewDownloadError(err)
	}

	durationSec := outcome.DurationSec
	if durationSec == 0 {
		durationSec = float64(req.DurationSec)
	}

	result := &Result{
		Bytes:       data,
		MIMEType:    VideoMIMEType,
		DurationSec: durationSec,
		Usage:       adapter.NormalizeUsage(outcome, req),
	}

	o.report(ctx, jobID, ProgressEvent{
		Percent: pctComplete,
		Phase:   PhaseComplete,
		Message: "generation complete",
	})

	o.logger.Info("job complete",
		slog.String("job_id", jobID),
		slog.String("provider", adapter.Name()),
		slog.Int("bytes", len(data)),
		slog.Float64("duration_sec", result.DurationSec),
	)

	return result, nil
}

// normalize clamps the requested duration into the adapter's limits and
// resolves the source image to an embedded data URI before submission.
// Image failures surface as 400-class errors: they are caller defects,
// raised before any provider call.
func (o *Orchestrator) normalize(ctx context.Context, adapter provider.Adapter, req provider.Request) (provider.Request, error) {
	req.DurationSec = adapter.Limits().ClampDuration(req.DurationSec)

	if ref := req.FirstImage(); ref != "" {
		dataURI, err := o.fetcher.InlineImage(ctx, ref)
		if err != nil {
			return provider.Request{}, &Error{
				Status:  400,
				Kind:    KindValidation,
				Message: "source image is not usable",
				Err:     err,
			}
		}
		images := make([]string, len(req.Images))
		copy(images, req.Images)
		images[0] = dataURI
		req.Images = images
	}

	return req, nil
}

// pollConfig derives the polling cadence for a job from adapter limits and
// the configured override.
func (o *Orchestrator) pollConfig(limits provider.Limits) PollConfig {
	cfg := PollConfig{
		Interval:    limits.PollInterval,
		MaxAttempts: limits.MaxPollAttempts,
	}
	if o.override.Interval != 0 {
		cfg.Interval = o.override.Interval
	}
	if o.override.MaxAttempts != 0 {
		cfg.MaxAttempts = o.override.MaxAttempts
	}
	return cfg
}

// report delivers a progress update and swallows sink errors: a broken
// reporter never fails the job.
func (o *Orchestrator) report(ctx context.Context, jobID string, event ProgressEvent) {
	if err := o.reporter.Report(ctx, jobID, event); err != nil {
		o.logger.Warn("progress reporter failed",
			slog.String("job_id", jobID),
			slog.String("phase", event.Phase),
			slog.String("error", err.Error()),
		)
	}
}
