package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsclip/newsclip/internal/config"
	"github.com/newsclip/newsclip/internal/database"
)

func validConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Address: ":8080"},
		Database:  database.Config{Host: "localhost", DBName: "newsclip"},
		Ingest:    config.IngestConfig{Workers: 8},
		Scheduler: config.SchedulerConfig{Tick: time.Minute},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing server address", func(c *config.Config) { c.Server.Address = "" }},
		{"missing database host", func(c *config.Config) { c.Database.Host = "" }},
		{"missing database name", func(c *config.Config) { c.Database.DBName = "" }},
		{"zero workers", func(c *config.Config) { c.Ingest.Workers = 0 }},
		{"sub-second tick", func(c *config.Config) { c.Scheduler.Tick = 100 * time.Millisecond }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
