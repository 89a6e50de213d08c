// Package config defines process configuration and its loading.
//
// Conventions:
// - New(ctx) returns a Config holding the defaults.
// - Load(ctx) layers a YAML file and environment variables over them.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// QueueSize bounds the result submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of result workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the attempt claim registry; 0 disables eviction.
	DedupeSize int `koanf:"dedupe_size"`

	// OnTargetTolerance is the pace window around the circle, in seconds.
	OnTargetTolerance float64 `koanf:"on_target_tolerance"`

	// StrictSeconds rejects "M:SS.ss" input with 60 or more seconds.
	StrictSeconds bool `koanf:"strict_seconds"`

	// MaxTopN caps leaderboard queries.
	MaxTopN int `koanf:"max_top_n"`
}

// New returns a Config with defaults. Context is accepted first to follow the
// project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		QueueSize:         1024,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        50_000,
		OnTargetTolerance: 1.0,
		StrictSeconds:     false,
		MaxTopN:           100,
	}
}

// Validate checks value ranges. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.DedupeSize < 0 {
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	}
	if !(c.OnTargetTolerance > 0) || math.IsInf(c.OnTargetTolerance, 0) {
		return fmt.Errorf("%w: on_target_tolerance must be positive, got %v", ErrInvalidConfig, c.OnTargetTolerance)
	}
	if c.MaxTopN < 1 {
		return fmt.Errorf("%w: max_top_n must be positive, got %d", ErrInvalidConfig, c.MaxTopN)
	}
	return nil
}
