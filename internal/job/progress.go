package job

import (
	"context"
	"fmt"

	"github.com/Stars1233/pollinations/internal/generation"
)

// ProgressRecorder persists orchestrator progress updates onto the job
// aggregate so the async HTTP surface can expose them. It implements
// generation.ProgressReporter; errors it returns are swallowed by the
// orchestrator and never fail a job.
type ProgressRecorder struct {
	repo Repository
}

// NewProgressRecorder creates a recorder over the given repository.
func NewProgressRecorder(repo Repository) *ProgressRecorder {
	return &ProgressRecorder{repo: repo}
}

// Report records one progress update for the job.
func (r *ProgressRecorder) Report(ctx context.Context, jobID string, event generation.ProgressEvent) error {
	jb, err := r.repo.FindByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	jb.UpdateProgress(event.Percent, event.Phase, event.Message)
	if err := r.repo.Save(ctx, jb); err != nil {
		return fmt.Errorf("record progress: %w", err)
	}
	return nil
}

// Compile-time check that ProgressRecorder implements the reporter contract.
var _ generation.ProgressReporter = (*ProgressRecorder)(nil)
