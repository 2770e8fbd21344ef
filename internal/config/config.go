// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite roster database file.
	DBPath string `koanf:"db_path"`

	// UploadDir is where uploads are spooled. Empty means the system temp dir.
	UploadDir string `koanf:"upload_dir"`

	// MaxUploadMB caps the size of an uploaded match file.
	MaxUploadMB int `koanf:"max_upload_mb"`

	// MaxConcurrent bounds the number of files processed at once.
	MaxConcurrent int `koanf:"max_concurrent"`

	// ParallelViews computes the KPI views concurrently.
	ParallelViews bool `koanf:"parallel_views"`

	// ProgressiveThreshold is the forward distance a pass must exceed to be
	// progressive, in pitch units.
	ProgressiveThreshold float64 `koanf:"progressive_threshold"`

	// ProgressiveTopN is the length of the progressive pass ranking.
	ProgressiveTopN int `koanf:"progressive_top_n"`

	// RequestTimeoutMS bounds each API request. Zero disables the bound.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// SeedTeams and SeedPlayers are roster sheets imported on start when the
	// database is empty.
	SeedTeams   string `koanf:"seed_teams"`
	SeedPlayers string `koanf:"seed_players"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBPath:               "datastrike.db",
		MaxUploadMB:          20,
		MaxConcurrent:        runtime.NumCPU(),
		ParallelViews:        true,
		ProgressiveThreshold: 15,
		ProgressiveTopN:      10,
		RequestTimeoutMS:     30_000,
	}
}

// MaxUploadBytes is MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// RequestTimeout is RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive, got %d", ErrInvalidConfig, c.MaxUploadMB)
	case c.MaxConcurrent <= 0:
		return fmt.Errorf("%w: max_concurrent must be positive, got %d", ErrInvalidConfig, c.MaxConcurrent)
	case c.ProgressiveThreshold <= 0:
		return fmt.Errorf("%w: progressive_threshold must be positive", ErrInvalidConfig)
	case c.ProgressiveTopN <= 0:
		return fmt.Errorf("%w: progressive_top_n must be positive, got %d", ErrInvalidConfig, c.ProgressiveTopN)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
