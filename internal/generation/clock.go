package generation

import (
	"context"
	"time"
)

// Clock abstracts time for the poll loop so tests can drive it with a fake
// clock instead of real sleeps.
type Clock interface {
	// Sleep blocks for the duration or until the context is done, returning
	// the context error in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the production Clock backed by the runtime timer.
type SystemClock struct{}

// Sleep blocks for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
