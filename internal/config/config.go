// Package config provides configuration management for the newsclip service.
// It handles loading, validation, and access to configuration values from
// YAML files and environment variables via Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/logger"
)

// Server defaults
const (
	defaultServerAddress      = ":8080"
	defaultServerReadTimeout  = 15 * time.Second
	defaultServerWriteTimeout = 15 * time.Second
	defaultServerIdleTimeout  = 60 * time.Second
)

// Ingestion defaults
const (
	defaultIngestWorkers    = 8
	defaultIngestFetchLimit = 25 * time.Second
	defaultSchedulerTick    = time.Minute
	defaultSourcesFile      = "sources.yml"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	Workers      int           `mapstructure:"workers"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	SourcesFile  string        `mapstructure:"sources_file"`
}

// SchedulerConfig holds scheduler settings.
type SchedulerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Tick    time.Duration `mapstructure:"tick"`
}

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  database.Config `mapstructure:"database"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logger    logger.Config   `mapstructure:"logger"`
}

// Load unmarshals the current Viper state into a Config. InitializeViper must
// have been called first.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("ingest workers must be positive, got %d", c.Ingest.Workers)
	}
	if c.Scheduler.Tick < time.Second {
		return fmt.Errorf("scheduler tick must be at least 1s, got %s", c.Scheduler.Tick)
	}
	return nil
}
