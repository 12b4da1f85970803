package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stars1233/pollinations/internal/provider"
)

// stubAdapter is a fully controllable backend for orchestrator tests.
type stubAdapter struct {
	name      string
	limits    provider.Limits
	submitErr error
	submitted []provider.Request
	steps     []pollStep
	pollCalls int
	artifact  []byte
	fetchErr  error
	fetched   []string
}

func (a *stubAdapter) Name() string            { return a.name }
func (a *stubAdapter) Limits() provider.Limits { return a.limits }

func (a *stubAdapter) Submit(_ context.Context, req provider.Request) (provider.TaskHandle, error) {
	a.submitted = append(a.submitted, req)
	if a.submitErr != nil {
		return provider.TaskHandle{}, a.submitErr
	}
	return provider.TaskHandle{ID: "task-42"}, nil
}

func (a *stubAdapter) PollOnce(context.Context, provider.TaskHandle) (provider.PollOutcome, error) {
	i := a.pollCalls
	a.pollCalls++
	if i >= len(a.steps) {
		return provider.PollOutcome{State: provider.StatePending}, nil
	}
	return a.steps[i].outcome, a.steps[i].err
}

func (a *stubAdapter) FetchArtifact(_ context.Context, locator string) ([]byte, error) {
	a.fetched = append(a.fetched, locator)
	if a.fetchErr != nil {
		return nil, a.fetchErr
	}
	return a.artifact, nil
}

func (a *stubAdapter) NormalizeUsage(outcome provider.PollOutcome, req provider.Request) provider.Usage {
	seconds := outcome.DurationSec
	if seconds == 0 {
		seconds = float64(req.DurationSec)
	}
	usage := provider.Usage{VideoSeconds: seconds}
	if req.Audio {
		usage.AudioSeconds = seconds
	}
	return usage
}

// recordingReporter collects every progress event.
type recordingReporter struct {
	events []ProgressEvent
}

func (r *recordingReporter) Report(_ context.Context, _ string, event ProgressEvent) error {
	r.events = append(r.events, event)
	return nil
}

func testLimits() provider.Limits {
	return provider.Limits{
		MinDurationSec:  4,
		MaxDurationSec:  8,
		PollInterval:    time.Second,
		MaxPollAttempts: 10,
	}
}

func newTestOrchestrator(adapter *stubAdapter, opts ...Option) *Orchestrator {
	registry := provider.NewRegistry()
	registry.Register(adapter.name, adapter)
	opts = append([]Option{WithClock(&fakeClock{})}, opts...)
	return NewOrchestrator(registry, opts...)
}

func TestGenerate_HappyPath(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		limits: testLimits(),
		steps: []pollStep{
			pending(),
			{outcome: provider.PollOutcome{
				State:       provider.StateSucceeded,
				Artifact:    "https://cdn/video.mp4",
				DurationSec: 7.2,
			}},
		},
		artifact: []byte("mp4-bytes"),
	}
	reporter := &recordingReporter{}
	o := newTestOrchestrator(adapter, WithReporter(reporter))

	result, err := o.Generate(context.Background(), "gen-1", provider.Request{
		Model:       "stub",
		Prompt:      "a red fox",
		DurationSec: 5,
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("mp4-bytes"), result.Bytes)
	assert.Equal(t, VideoMIMEType, result.MIMEType)
	// Provider-reported actual duration wins over the requested one.
	assert.Equal(t, 7.2, result.DurationSec)
	assert.Equal(t, 7.2, result.Usage.VideoSeconds)
	assert.Equal(t, []string{"https://cdn/video.mp4"}, adapter.fetched)
}

func TestGenerate_ProgressIsMonotonicAndCompletesAfterDownload(t *testing.T) {
	adapter := &stubAdapter{
		name:     "stub",
		limits:   testLimits(),
		steps:    []pollStep{pending(), pending(), succeeded("url")},
		artifact: []byte("v"),
	}
	reporter := &recordingReporter{}
	o := newTestOrchestrator(adapter, WithReporter(reporter))

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})
	require.NoError(t, err)

	require.NotEmpty(t, reporter.events)
	prev := 0
	for _, ev := range reporter.events {
		assert.GreaterOrEqual(t, ev.Percent, prev, "progress regressed at phase %s", ev.Phase)
		prev = ev.Percent
	}
	last := reporter.events[len(reporter.events)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, PhaseComplete, last.Phase)
	// 100 appears exactly once, after the download.
	for _, ev := range reporter.events[:len(reporter.events)-1] {
		assert.Less(t, ev.Percent, 100)
	}
}

func TestGenerate_ClampsRequestedDuration(t *testing.T) {
	adapter := &stubAdapter{
		name:     "stub",
		limits:   testLimits(),
		steps:    []pollStep{succeeded("url")},
		artifact: []byte("v"),
	}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{
		Model:       "stub",
		Prompt:      "p",
		DurationSec: 1,
	})
	require.NoError(t, err)

	require.Len(t, adapter.submitted, 1)
	assert.Equal(t, 4, adapter.submitted[0].DurationSec)

	_, err = o.Generate(context.Background(), "gen-2", provider.Request{
		Model:       "stub",
		Prompt:      "p",
		DurationSec: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, adapter.submitted[1].DurationSec)
}

func TestGenerate_UnknownModel(t *testing.T) {
	adapter := &stubAdapter{name: "stub", limits: testLimits()}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "nope", Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 400, StatusFor(err))
	assert.Equal(t, KindValidation, KindFor(err))
	assert.Empty(t, adapter.submitted)
}

func TestGenerate_RequiresPromptOrImage(t *testing.T) {
	adapter := &stubAdapter{name: "stub", limits: testLimits()}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub"})

	require.Error(t, err)
	assert.Equal(t, 400, StatusFor(err))
}

func TestGenerate_SubmissionRejected(t *testing.T) {
	adapter := &stubAdapter{
		name:      "stub",
		limits:    testLimits(),
		submitErr: &statusErr{code: 422},
	}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 400, StatusFor(err))
	assert.Equal(t, KindSubmission, KindFor(err))
}

func TestGenerate_ProviderFailureCarriesReason(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		limits: testLimits(),
		steps: []pollStep{
			{outcome: provider.PollOutcome{State: provider.StateFailed, Reason: "content policy violation"}},
		},
	}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 500, StatusFor(err))
	assert.Contains(t, err.Error(), "content policy violation")
	assert.Empty(t, adapter.fetched)
}

func TestGenerate_SuccessWithoutArtifact(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		limits: testLimits(),
		steps:  []pollStep{succeeded("")},
	}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})

	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingArtifact))
	assert.Empty(t, adapter.fetched)
}

func TestGenerate_DownloadFailure(t *testing.T) {
	adapter := &stubAdapter{
		name:     "stub",
		limits:   testLimits(),
		steps:    []pollStep{succeeded("url")},
		fetchErr: errors.New("connection reset"),
	}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 500, StatusFor(err))
	assert.Equal(t, KindDownload, KindFor(err))
}

func TestGenerate_PollOverrideWins(t *testing.T) {
	adapter := &stubAdapter{
		name:   "stub",
		limits: testLimits(),
	}
	o := newTestOrchestrator(adapter, WithPollOverride(PollConfig{MaxAttempts: 2}))

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{Model: "stub", Prompt: "p"})

	require.Error(t, err)
	assert.Equal(t, 504, StatusFor(err))
	assert.Equal(t, 2, adapter.pollCalls)
}

func TestGenerate_InvalidImageReference(t *testing.T) {
	adapter := &stubAdapter{name: "stub", limits: testLimits()}
	o := newTestOrchestrator(adapter)

	_, err := o.Generate(context.Background(), "gen-1", provider.Request{
		Model:  "stub",
		Prompt: "p",
		Images: []string{"ftp://example.com/frame.png"},
	})

	require.Error(t, err)
	assert.Equal(t, 400, StatusFor(err))
	assert.Equal(t, KindValidation, KindFor(err))
	assert.Empty(t, adapter.submitted)
}
