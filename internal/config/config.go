// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and SPORTSWORLD_ env vars.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"slices"
	"time"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendS3       = "s3"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects json or text output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3001".
	Addr string `koanf:"addr"`

	// StoreBackend picks the durable medium: file, s3, sqlite or postgres.
	StoreBackend string `koanf:"store_backend"`

	// DataPath is the JSON document path (file) or database file (sqlite).
	DataPath string `koanf:"data_path"`

	// DatabaseURL is the postgres connection string.
	DatabaseURL string `koanf:"database_url"`

	// S3 settings for the s3 backend. An empty endpoint uses AWS.
	S3Bucket          string `koanf:"s3_bucket"`
	S3Key             string `koanf:"s3_key"`
	S3Endpoint        string `koanf:"s3_endpoint"`
	S3Region          string `koanf:"s3_region"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`

	// SeedDemo fills a fresh store with the demo catalog.
	SeedDemo bool `koanf:"seed_demo"`

	// RemoteURL, when set, makes the synchronizer persist through another
	// server's persistence API instead of a local backend.
	RemoteURL string `koanf:"remote_url"`

	// WriteQueueSize bounds the queue of durable writes.
	WriteQueueSize int `koanf:"write_queue_size"`

	// WriterCount sets the number of durable write workers.
	WriterCount int `koanf:"writer_count"`

	// TickIntervalMS is the live feed cadence.
	TickIntervalMS int `koanf:"tick_interval_ms"`

	// LivePool lists the match ids the live feed starts with.
	LivePool []string `koanf:"live_pool"`

	// DefaultLiveMinute is assigned to loaded Live matches without a minute.
	DefaultLiveMinute int `koanf:"default_live_minute"`

	// Gemini settings for article generation. No key means fallback copy.
	GeminiAPIKey string `koanf:"gemini_api_key"`
	GeminiModel  string `koanf:"gemini_model"`

	// CORSOrigins lists the allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "json",
		Addr:              ":3001",
		StoreBackend:      BackendFile,
		DataPath:          "db.json",
		S3Key:             "db.json",
		S3Region:          "auto",
		SeedDemo:          true,
		WriteQueueSize:    1024,
		WriterCount:       4,
		TickIntervalMS:    5000,
		LivePool:          []string{"s1", "s10", "s11"},
		DefaultLiveMinute: 72,
		GeminiModel:       "gemini-3-flash-preview",
		CORSOrigins:       []string{"*"},
	}
}

// TickInterval returns the live feed cadence as a duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WriteQueueSize <= 0:
		return fmt.Errorf("%w: write_queue_size must be positive", ErrInvalidConfig)
	case c.WriterCount <= 0:
		return fmt.Errorf("%w: writer_count must be positive", ErrInvalidConfig)
	case c.TickIntervalMS <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	case c.DefaultLiveMinute < 0:
		return fmt.Errorf("%w: default_live_minute must not be negative", ErrInvalidConfig)
	case c.LogFormat != "json" && c.LogFormat != "text":
		return fmt.Errorf("%w: log_format must be json or text", ErrInvalidConfig)
	}
	if c.RemoteURL != "" {
		return nil
	}

	if !slices.Contains([]string{BackendFile, BackendS3, BackendSQLite, BackendPostgres}, c.StoreBackend) {
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	switch c.StoreBackend {
	case BackendFile, BackendSQLite:
		if c.DataPath == "" {
			return fmt.Errorf("%w: data_path is required for the %s backend", ErrInvalidConfig, c.StoreBackend)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url is required for the postgres backend", ErrInvalidConfig)
		}
	case BackendS3:
		if c.S3Bucket == "" || c.S3Key == "" {
			return fmt.Errorf("%w: s3_bucket and s3_key are required for the s3 backend", ErrInvalidConfig)
		}
	}
	return nil
}
