package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Stars1233/pollinations/internal/media"
	"github.com/Stars1233/pollinations/internal/veo"
)

// DefaultVeoLimits is the default request and polling configuration for Veo.
var DefaultVeoLimits = Limits{
	MinDurationSec:  4,
	MaxDurationSec:  8,
	PollInterval:    10 * time.Second,
	MaxPollAttempts: 30,
}

// VeoAdapter adapts the Veo client to the Adapter interface.
// Veo is operation-based rather than task-based: the handle carries the
// operation name, and polling reads the operation until done.
type VeoAdapter struct {
	client veo.Client
	model  string
	limits Limits
}

// NewVeoAdapter creates a new Veo adapter for the given model id.
func NewVeoAdapter(client veo.Client, model string) *VeoAdapter {
	return &VeoAdapter{
		client: client,
		model:  model,
		limits: DefaultVeoLimits,
	}
}

// WithLimits overrides the default limits, keeping zero fields at defaults.
func (a *VeoAdapter) WithLimits(l Limits) *VeoAdapter {
	a.limits = mergeLimits(a.limits, l)
	return a
}

// Name returns the backend name.
func (a *VeoAdapter) Name() string { return "veo" }

// Limits returns the request bounds and polling cadence.
func (a *VeoAdapter) Limits() Limits { return a.limits }

// Submit starts a Veo operation and returns its name as the task handle.
func (a *VeoAdapter) Submit(ctx context.Context, req Request) (TaskHandle, error) {
	opReq := veo.OperationRequest{
		Model:         a.model,
		Prompt:        req.Prompt,
		DurationSec:   req.DurationSec,
		AspectRatio:   req.AspectRatio,
		GenerateAudio: req.Audio,
	}

	if ref := req.FirstImage(); ref != "" {
		mime, data, err := media.ParseDataURI(ref)
		if err != nil {
			return TaskHandle{}, fmt.Errorf("veo adapter: source image: %w", err)
		}
		opReq.ImageBytesB64 = base64.StdEncoding.EncodeToString(data)
		opReq.ImageMIMEType = mime
	}

	name, err := a.client.CreateOperation(ctx, opReq)
	if err != nil {
		return TaskHandle{}, fmt.Errorf("veo adapter submit: %w", err)
	}

	return TaskHandle{ID: name}, nil
}

// PollOnce reads the operation state once.
func (a *VeoAdapter) PollOnce(ctx context.Context, handle TaskHandle) (PollOutcome, error) {
	result, err := a.client.GetOperation(ctx, handle.ID)
	if err != nil {
		return PollOutcome{}, fmt.Errorf("veo adapter poll: %w", err)
	}

	if !result.Done {
		return PollOutcome{State: StatePending}, nil
	}
	if result.Error != "" {
		return PollOutcome{State: StateFailed, Reason: result.Error}, nil
	}
	return PollOutcome{State: StateSucceeded, Artifact: result.VideoURI}, nil
}

// FetchArtifact downloads the finished video from the result URI.
func (a *VeoAdapter) FetchArtifact(ctx context.Context, locator string) ([]byte, error) {
	data, err := a.client.Download(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("veo adapter download: %w", err)
	}
	return data, nil
}

// NormalizeUsage builds the usage record. Veo generates an audio track when
// requested, so audio seconds mirror video seconds for audio-enabled jobs.
func (a *VeoAdapter) NormalizeUsage(outcome PollOutcome, req Request) Usage {
	seconds := outcome.DurationSec
	if seconds == 0 {
		seconds = float64(req.DurationSec)
	}
	usage := Usage{VideoSeconds: seconds}
	if req.Audio {
		usage.AudioSeconds = seconds
	}
	return usage
}

// Compile-time check that VeoAdapter implements Adapter.
var _ Adapter = (*VeoAdapter)(nil)
