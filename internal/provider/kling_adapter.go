package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Stars1233/pollinations/internal/kling"
	"github.com/Stars1233/pollinations/internal/media"
)

// DefaultKlingLimits is the default request and polling configuration for
// Kling. Kling jobs routinely take minutes; 36 attempts at 10s cover the
// documented worst case.
var DefaultKlingLimits = Limits{
	MinDurationSec:  5,
	MaxDurationSec:  10,
	PollInterval:    10 * time.Second,
	MaxPollAttempts: 36,
}

// KlingAdapter adapts the Kling client to the Adapter interface.
type KlingAdapter struct {
	client    kling.Client
	modelName string
	limits    Limits
}

// NewKlingAdapter creates a new Kling adapter for the given model variant.
func NewKlingAdapter(client kling.Client, modelName string) *KlingAdapter {
	return &KlingAdapter{
		client:    client,
		modelName: modelName,
		limits:    DefaultKlingLimits,
	}
}

// WithLimits overrides the default limits, keeping zero fields at defaults.
func (a *KlingAdapter) WithLimits(l Limits) *KlingAdapter {
	a.limits = mergeLimits(a.limits, l)
	return a
}

// Name returns the backend name.
func (a *KlingAdapter) Name() string { return "kling" }

// Limits returns the request bounds and polling cadence.
func (a *KlingAdapter) Limits() Limits { return a.limits }

// Submit sends the generation request to Kling and returns a task handle.
// A request with a source image goes to image2video, otherwise text2video;
// the chosen kind is recorded on the handle because status lookups are
// routed by it.
func (a *KlingAdapter) Submit(ctx context.Context, req Request) (TaskHandle, error) {
	kind := kling.KindText2Video
	image := ""
	if ref := req.FirstImage(); ref != "" {
		kind = kling.KindImage2Video
		// Kling wants the bare base64 payload, not a full data URI.
		_, data, err := media.ParseDataURI(ref)
		if err != nil {
			return TaskHandle{}, fmt.Errorf("kling adapter: source image: %w", err)
		}
		image = base64.StdEncoding.EncodeToString(data)
	}

	taskID, err := a.client.CreateTask(ctx, kind, kling.TaskRequest{
		ModelName:   a.modelName,
		Prompt:      req.Prompt,
		Image:       image,
		DurationSec: snapKlingDuration(req.DurationSec),
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return TaskHandle{}, fmt.Errorf("kling adapter submit: %w", err)
	}

	return TaskHandle{ID: taskID, Kind: string(kind)}, nil
}

// PollOnce performs a single status check for the task.
func (a *KlingAdapter) PollOnce(ctx context.Context, handle TaskHandle) (PollOutcome, error) {
	result, err := a.client.GetTask(ctx, kling.TaskKind(handle.Kind), handle.ID)
	if err != nil {
		return PollOutcome{}, fmt.Errorf("kling adapter poll: %w", err)
	}

	switch result.Status {
	case kling.StatusSucceed:
		return PollOutcome{
			State:       StateSucceeded,
			Artifact:    result.VideoURL,
			DurationSec: result.DurationSec,
		}, nil
	case kling.StatusFailed:
		return PollOutcome{State: StateFailed, Reason: result.Error}, nil
	default:
		return PollOutcome{State: StatePending}, nil
	}
}

// FetchArtifact downloads the finished video from the result URL.
func (a *KlingAdapter) FetchArtifact(ctx context.Context, locator string) ([]byte, error) {
	data, err := a.client.Download(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("kling adapter download: %w", err)
	}
	return data, nil
}

// NormalizeUsage builds the usage record. Kling outputs have no audio track.
func (a *KlingAdapter) NormalizeUsage(outcome PollOutcome, req Request) Usage {
	seconds := outcome.DurationSec
	if seconds == 0 {
		seconds = float64(req.DurationSec)
	}
	return Usage{VideoSeconds: seconds}
}

// snapKlingDuration snaps a clamped duration to the nearest value Kling
// accepts (5 or 10).
func snapKlingDuration(seconds int) int {
	if seconds <= 7 {
		return 5
	}
	return 10
}

// mergeLimits overlays non-zero fields of override onto base.
func mergeLimits(base, override Limits) Limits {
	if override.MinDurationSec != 0 {
		base.MinDurationSec = override.MinDurationSec
	}
	if override.MaxDurationSec != 0 {
		base.MaxDurationSec = override.MaxDurationSec
	}
	if override.PollInterval != 0 {
		base.PollInterval = override.PollInterval
	}
	if override.MaxPollAttempts != 0 {
		base.MaxPollAttempts = override.MaxPollAttempts
	}
	return base
}

// Compile-time check that KlingAdapter implements Adapter.
var _ Adapter = (*KlingAdapter)(nil)
