// Package bootstrap provides dependency initialization for the video API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Stars1233/pollinations/internal/config"
	"github.com/Stars1233/pollinations/internal/generation"
	"github.com/Stars1233/pollinations/internal/job"
	"github.com/Stars1233/pollinations/internal/kling"
	"github.com/Stars1233/pollinations/internal/minimax"
	"github.com/Stars1233/pollinations/internal/provider"
	"github.com/Stars1233/pollinations/internal/seedance"
	"github.com/Stars1233/pollinations/internal/storage"
	"github.com/Stars1233/pollinations/internal/veo"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Service  *job.Service
	Registry *provider.Registry
	Store    storage.Storage
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry, err := initRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	repo := job.NewMemoryRepository()

	orchestratorOpts := []generation.Option{
		generation.WithLogger(logger),
		generation.WithReporter(job.NewProgressRecorder(repo)),
	}
	if cfg.PollIntervalSec > 0 || cfg.PollMaxAttempts > 0 {
		orchestratorOpts = append(orchestratorOpts, generation.WithPollOverride(generation.PollConfig{
			Interval:    time.Duration(cfg.PollIntervalSec) * time.Second,
			MaxAttempts: cfg.PollMaxAttempts,
		}))
	}
	orchestrator := generation.NewOrchestrator(registry, orchestratorOpts...)

	svc := job.NewService(repo, orchestrator, store,
		job.WithServiceLogger(logger),
		job.WithS3Delivery(cfg.S3Enabled()),
	)

	return &Dependencies{
		Service:  svc,
		Registry: registry,
		Store:    store,
	}, nil
}

// initRegistry creates one adapter per provider that has an API key set.
func initRegistry(cfg *config.Config, logger *slog.Logger) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if cfg.KlingAPIKey != "" {
		opts := []kling.ClientOption{}
		if cfg.KlingBaseURL != "" {
			opts = append(opts, kling.WithBaseURL(cfg.KlingBaseURL))
		}
		client, err := kling.NewClient(cfg.KlingAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create kling client: %w", err)
		}
		registry.Register("kling", provider.NewKlingAdapter(client, cfg.KlingModel))
	}

	if cfg.SeedanceAPIKey != "" {
		opts := []seedance.ClientOption{}
		if cfg.SeedanceBaseURL != "" {
			opts = append(opts, seedance.WithBaseURL(cfg.SeedanceBaseURL))
		}
		client, err := seedance.NewClient(cfg.SeedanceAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create seedance client: %w", err)
		}
		registry.Register("seedance", provider.NewSeedanceAdapter(client, cfg.SeedanceModel))
	}

	if cfg.GeminiAPIKey != "" {
		opts := []veo.ClientOption{}
		if cfg.VeoBaseURL != "" {
			opts = append(opts, veo.WithBaseURL(cfg.VeoBaseURL))
		}
		client, err := veo.NewClient(cfg.GeminiAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create veo client: %w", err)
		}
		registry.Register("veo", provider.NewVeoAdapter(client, cfg.VeoModel))
	}

	if cfg.MiniMaxAPIKey != "" {
		opts := []minimax.ClientOption{}
		if cfg.MiniMaxBaseURL != "" {
			opts = append(opts, minimax.WithBaseURL(cfg.MiniMaxBaseURL))
		}
		client, err := minimax.NewClient(cfg.MiniMaxAPIKey, opts...)
		if err != nil {
			return nil, fmt.Errorf("create minimax client: %w", err)
		}
		registry.Register("minimax", provider.NewMiniMaxAdapter(client, cfg.MiniMaxModel))
	}

	models := registry.Models()
	if len(models) == 0 {
		return nil, config.ErrNoProvidersConfigured
	}
	logger.Info("providers configured", slog.Any("models", models))

	return registry, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.ArtifactDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.ArtifactDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("artifact_dir", localStore.Dir()),
	)
	return localStore, nil
}
