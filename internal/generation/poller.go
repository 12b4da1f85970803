package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Stars1233/pollinations/internal/provider"
)

// PollConfig bounds one polling run: a fixed delay between attempts and a
// hard ceiling on the number of attempts. Both come from the adapter's
// limits, optionally overridden by configuration.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller drives repeated status checks for a submitted task until a terminal
// outcome or until the attempt ceiling is exhausted. State is threaded
// explicitly through each iteration (the attempt counter); the loop holds no
// ambient mutable state, so it is driven in tests with a fake clock and a
// scripted sequence of adapter responses.
type Poller struct {
	clock  Clock
	logger *slog.Logger
}

// NewPoller creates a Poller. A nil clock gets the system clock; a nil
// logger gets slog.Default().
func NewPoller(clock Clock, logger *slog.Logger) *Poller {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{clock: clock, logger: logger}
}

// Run polls the task until a terminal outcome.
//
// Per attempt: a Succeeded or Failed outcome ends the run; a permanent
// transport failure (4xx) ends the run on that same attempt; a transient
// failure (network, 5xx, 429) consumes the attempt and the loop continues.
// After exactly cfg.MaxAttempts non-terminal attempts the run ends with a
// 504-class timeout and no further status check is issued. onAttempt, if
// set, is invoked after every non-terminal attempt.
func (p *Poller) Run(
	ctx context.Context,
	adapter provider.Adapter,
	handle provider.TaskHandle,
	cfg PollConfig,
	onAttempt func(attempt int),
) (provider.PollOutcome, error) {
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		outcome, err := adapter.PollOnce(ctx, handle)
		if err != nil {
			switch Classify(err) {
			case ClassCanceled:
				return provider.PollOutcome{}, fmt.Errorf("generation: polling cancelled: %w", err)
			case ClassPermanent:
				return provider.PollOutcome{}, NewProviderError("status check rejected", err)
			default:
				// Absorbed: the attempt counts, the loop continues.
				p.logger.Warn("transient poll failure",
					slog.String("provider", adapter.Name()),
					slog.String("task_id", handle.ID),
					slog.Int("attempt", attempt),
					slog.String("error", err.Error()),
				)
			}
		} else {
			switch outcome.State {
			case provider.StateSucceeded:
				return outcome, nil
			case provider.StateFailed:
				return outcome, NewProviderError(outcome.Reason, nil)
			}
		}

		if onAttempt != nil {
			onAttempt(attempt)
		}

		if attempt < cfg.MaxAttempts {
			if err := p.clock.Sleep(ctx, cfg.Interval); err != nil {
				return provider.PollOutcome{}, fmt.Errorf("generation: polling cancelled: %w", err)
			}
		}
	}

	return provider.PollOutcome{}, NewTimeoutError(adapter.Name(), cfg.MaxAttempts)
}
