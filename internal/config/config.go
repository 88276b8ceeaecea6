// Package config loads all runtime configuration from environment variables.
// Fail-fast: required variables missing at startup abort the process.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime configuration for the auto-emailer.
type Config struct {
	// DatabaseURL is the Postgres connection string for the identity and
	// sent-log store.
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// RedisURL is the Redis connection string for the job-vacancy channel.
	RedisURL string `envconfig:"REDIS_URL" required:"true"`

	// Channel is the pub/sub channel carrying job-vacancy events.
	Channel string `envconfig:"JOB_VACANCY_CHANNEL" default:"job_seek"`

	// SMTPHost and SMTPPort point at the outbound mail server.
	SMTPHost string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`

	// SMTPEncryption is "starttls", "ssl_tls" or "none".
	SMTPEncryption string `envconfig:"SMTP_ENCRYPTION" default:"starttls"`

	// SMTPTimeout bounds one connect/auth/send/quit cycle.
	SMTPTimeout time.Duration `envconfig:"SMTP_TIMEOUT" default:"30s"`

	// DataDir is the root directory holding per-identity CVs and templates.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// HTTPPort serves /health and /metrics.
	HTTPPort int `envconfig:"HTTP_PORT" default:"8085"`

	// StatsInterval is how often the aggregate stats summary is logged.
	StatsInterval time.Duration `envconfig:"STATS_INTERVAL" default:"1h"`

	// LogLevel sets the minimum log level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads Config from environment variables using envconfig.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &c, nil
}

// SlogLevel converts the LogLevel string to a slog.Level.
// Unknown values default to slog.LevelInfo.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// CVDir returns the directory holding per-identity CV files.
func (c *Config) CVDir() string {
	return filepath.Join(c.DataDir, "cv")
}

// TemplateDir returns the directory holding per-identity email templates.
func (c *Config) TemplateDir() string {
	return filepath.Join(c.DataDir, "template")
}
