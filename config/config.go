// SPDX-License-Identifier: EPL-2.0

// Package config loads runtime settings from AUDALG_-prefixed environment
// variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Prefix is prepended to every variable name.
const Prefix = "AUDALG_"

var (
	ErrLoad    = errors.New("config: cannot load environment")
	ErrInvalid = errors.New("config: invalid configuration")
)

// Config holds every runtime setting.
type Config struct {
	// Logging
	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT, default=text" validate:"oneof=text json"`

	// Engine memory, in bytes
	MemoryInitial int `env:"MEMORY_INITIAL, default=1048576" validate:"gt=0,ltefield=MemoryLimit"`
	MemoryLimit   int `env:"MEMORY_LIMIT, default=268435456" validate:"gte=16"`

	// CatalogPath replaces the embedded algorithm catalog when set.
	CatalogPath string `env:"CATALOG_PATH"`

	// Framing
	FrameSize int `env:"FRAME_SIZE, default=1024" validate:"gt=0"`
	HopSize   int `env:"HOP_SIZE, default=512" validate:"gt=0"`

	// SampleRate is the rate signals are resampled to on load; zero keeps
	// the file's rate.
	SampleRate int `env:"SAMPLE_RATE, default=0" validate:"gte=0"`

	// Storage
	StorageRoot       string `env:"STORAGE_ROOT, default=." validate:"required"`
	S3Region          string `env:"S3_REGION" validate:"required_with=S3Endpoint"`
	S3Endpoint        string `env:"S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID" validate:"required_with=S3SecretAccessKey"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY" validate:"required_with=S3AccessKeyID"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads variables through l, then validates the result.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: envconfig.PrefixLookuper(Prefix, l),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// S3Enabled reports whether enough is set to reach an S3 service.
func (c *Config) S3Enabled() bool { return c.S3Region != "" }

// NewLogger builds a logger writing to stderr in the configured format and
// level.
func (c *Config) NewLogger() *slog.Logger { return c.newLogger(os.Stderr) }

func (c *Config) newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// String masks the S3 secret.
func (c *Config) String() string {
	secret := ""
	if c.S3SecretAccessKey != "" {
		secret = "***"
	}
	return fmt.Sprintf(
		"Config{LogLevel: %s, LogFormat: %s, MemoryInitial: %d, MemoryLimit: %d, CatalogPath: %q, FrameSize: %d, HopSize: %d, SampleRate: %d, StorageRoot: %q, S3Region: %s, S3Endpoint: %s, S3AccessKeyID: %s, S3SecretAccessKey: %s}",
		c.LogLevel, c.LogFormat, c.MemoryInitial, c.MemoryLimit, c.CatalogPath,
		c.FrameSize, c.HopSize, c.SampleRate, c.StorageRoot,
		c.S3Region, c.S3Endpoint, c.S3AccessKeyID, secret,
	)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
