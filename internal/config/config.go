// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// ErrNoProvidersConfigured is returned when no provider API key is set.
var ErrNoProvidersConfigured = errors.New("config: at least one provider API key is required")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Kling settings
	KlingAPIKey  string `env:"KLING_API_KEY" json:"-"` // Masked in JSON
	KlingBaseURL string `env:"KLING_BASE_URL" json:"kling_base_url,omitempty"`
	KlingModel   string `env:"KLING_MODEL, default=kling-v2-1-master" json:"kling_model"`

	// Seedance (BytePlus ModelArk) settings
	SeedanceAPIKey  string `env:"SEEDANCE_API_KEY" json:"-"` // Masked in JSON
	SeedanceBaseURL string `env:"SEEDANCE_BASE_URL" json:"seedance_base_url,omitempty"`
	SeedanceModel   string `env:"SEEDANCE_MODEL, default=seedance-1-0-lite-t2v-250428" json:"seedance_model"`

	// Veo (Gemini API) settings
	GeminiAPIKey string `env:"GEMINI_API_KEY" json:"-"` // Masked in JSON
	VeoBaseURL   string `env:"VEO_BASE_URL" json:"veo_base_url,omitempty"`
	VeoModel     string `env:"VEO_MODEL, default=veo-3.0-generate-001" json:"veo_model"`

	// MiniMax (Hailuo) settings
	MiniMaxAPIKey  string `env:"MINIMAX_API_KEY" json:"-"` // Masked in JSON
	MiniMaxBaseURL string `env:"MINIMAX_BASE_URL" json:"minimax_base_url,omitempty"`
	MiniMaxModel   string `env:"MINIMAX_MODEL, default=MiniMax-Hailuo-02" json:"minimax_model"`

	// Polling overrides. Zero means use each provider's defaults.
	PollIntervalSec int `env:"POLL_INTERVAL_SEC" json:"poll_interval_sec,omitempty"`
	PollMaxAttempts int `env:"POLL_MAX_ATTEMPTS" json:"poll_max_attempts,omitempty"`

	// Storage settings
	ArtifactDir string `env:"ARTIFACT_DIR" json:"artifact_dir,omitempty"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that at least one provider backend can be wired up.
func (c *Config) Validate() error {
	if c.KlingAPIKey == "" && c.SeedanceAPIKey == "" && c.GeminiAPIKey == "" && c.MiniMaxAPIKey == "" {
		return ErrNoProvidersConfigured
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, KlingModel: %s, SeedanceModel: %s, VeoModel: %s, MiniMaxModel: %s, PollIntervalSec: %d, PollMaxAttempts: %d, ArtifactDir: %s, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.KlingModel,
		c.SeedanceModel,
		c.VeoModel,
		c.MiniMaxModel,
		c.PollIntervalSec,
		c.PollMaxAttempts,
		c.ArtifactDir,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
