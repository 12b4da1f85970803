package job

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/Stars1233/pollinations/internal/generation"
	"github.com/Stars1233/pollinations/internal/provider"
	"github.com/Stars1233/pollinations/internal/storage"
)

// Generator runs one generation request end to end and returns the
// finished video. generation.Orchestrator is the production implementation.
type Generator interface {
	Generate(ctx context.Context, jobID string, req provider.Request) (*generation.Result, error)
}

// Service coordinates job lifecycle: it persists the aggregate, delegates
// the heavy lifting to the Generator, stores the resulting artifact, and
// records the terminal state.
type Service struct {
	repo      Repository
	generator Generator
	store     storage.Storage
	logger    *slog.Logger
	pushToS3  bool
}

// ServiceOption configures optional Service behavior.
type ServiceOption func(*Service)

// WithS3Delivery makes the service upload finished artifacts to S3
// instead of keeping only the local copy.
func WithS3Delivery(enabled bool) ServiceOption {
	return func(s *Service) {
		s.pushToS3 = enabled
	}
}

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a Service with the given dependencies.
func NewService(repo Repository, generator Generator, store storage.Storage, opts ...ServiceOption) *Service {
	s := &Service{
		repo:      repo,
		generator: generator,
		store:     store,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJob creates a new job in SUBMITTED status and persists it.
func (s *Service) CreateJob(ctx context.Context, req provider.Request) (*Job, error) {
	jb := New(req.Model, req.Prompt)

	s.logger.Info("creating job",
		slog.String("job_id", jb.ID),
		slog.String("model", req.Model),
		slog.Int("duration_sec", req.DurationSec),
	)

	if err := s.repo.Save(ctx, jb); err != nil {
		s.logger.Error("failed to save job",
			slog.String("job_id", jb.ID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return jb, nil
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// ListJobs returns all known jobs.
func (s *Service) ListJobs(ctx context.Context) ([]*Job, error) {
	return s.repo.List(ctx)
}

// Run executes an already-created job to completion. The job transitions
// SUBMITTED -> POLLING immediately and ends in SUCCEEDED, FAILED, or
// TIMED_OUT. The generation error, if any, is returned so synchronous
// callers can surface it; async callers only need the persisted state.
func (s *Service) Run(ctx context.Context, jb *Job, req provider.Request) (*generation.Result, error) {
	if err := jb.Start(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, jb); err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, jb.ID, req)
	if err != nil {
		return nil, s.finishFailed(ctx, jb, err)
	}

	artifactPath, artifactURL, saveErr := s.storeArtifact(ctx, jb.ID, result)
	if saveErr != nil {
		return nil, s.finishFailed(ctx, jb, generation.NewDownloadError(saveErr))
	}

	// Re-read so progress recorded during generation is not lost.
	if fresh, findErr := s.repo.FindByID(ctx, jb.ID); findErr == nil {
		jb = fresh
	}
	jb.SetResult(artifactPath, artifactURL, result.MIMEType, result.DurationSec,
		result.Usage.VideoSeconds, result.Usage.AudioSeconds)
	if err := jb.Succeed(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, jb); err != nil {
		return nil, err
	}

	s.logger.Info("job finished",
		slog.String("job_id", jb.ID),
		slog.String("status", string(jb.Status)),
		slog.String("artifact_path", artifactPath),
	)
	return result, nil
}

// Process creates a job and runs it synchronously.
func (s *Service) Process(ctx context.Context, req provider.Request) (*Job, *generation.Result, error) {
	jb, err := s.CreateJob(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Run(ctx, jb, req)
	if err != nil {
		return jb, nil, err
	}
	return jb, result, nil
}

// storeArtifact writes the finished video to local storage and, when S3
// delivery is enabled, uploads it as well. A missing S3 configuration
// falls back to the local copy instead of failing the job.
func (s *Service) storeArtifact(ctx context.Context, jobID string, result *generation.Result) (path, url string, err error) {
	path, err = s.store.SaveArtifact(ctx, jobID, bytes.NewReader(result.Bytes))
	if err != nil {
		return "", "", err
	}

	if s.pushToS3 {
		url, err = s.store.UploadToS3(ctx, jobID+".mp4", bytes.NewReader(result.Bytes))
		if err != nil {
			if err == storage.ErrS3NotConfigured {
				s.logger.Warn("s3 delivery requested but not configured, keeping local artifact",
					slog.String("job_id", jobID),
				)
				return path, "", nil
			}
			return "", "", err
		}
	}
	return path, url, nil
}

// finishFailed records the terminal failure state for the job and returns
// the original generation error.
func (s *Service) finishFailed(ctx context.Context, jb *Job, genErr error) error {
	// Re-read for the same reason as the success path.
	if fresh, findErr := s.repo.FindByID(ctx, jb.ID); findErr == nil {
		jb = fresh
	}

	statusCode := generation.StatusFor(genErr)
	var transitionErr error
	if generation.KindFor(genErr) == generation.KindTimeout {
		transitionErr = jb.Timeout(genErr.Error(), statusCode)
	} else {
		transitionErr = jb.Fail(genErr.Error(), statusCode)
	}
	if transitionErr != nil {
		s.logger.Error("failed to record job failure",
			slog.String("job_id", jb.ID),
			slog.String("error", transitionErr.Error()),
		)
	}
	if err := s.repo.Save(ctx, jb); err != nil {
		s.logger.Error("failed to save failed job",
			slog.String("job_id", jb.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Warn("job failed",
		slog.String("job_id", jb.ID),
		slog.String("status", string(jb.Status)),
		slog.Int("status_code", statusCode),
		slog.String("error", genErr.Error()),
	)
	return genErr
}
