package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InitializeViper initializes Viper configuration from environment variables
// and config files. This must be called before Load().
func InitializeViper() error {
	loadEnvFile()
	setupViper()
	setDefaults()
	readConfigFile()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	setupDevelopmentLogging()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"development": false,
		"encoding":    "json",
	})

	viper.SetDefault("server", map[string]any{
		"address":       defaultServerAddress,
		"read_timeout":  defaultServerReadTimeout.String(),
		"write_timeout": defaultServerWriteTimeout.String(),
		"idle_timeout":  defaultServerIdleTimeout.String(),
	})

	viper.SetDefault("database", map[string]any{
		"host":    "localhost",
		"port":    "5432",
		"user":    "newsclip",
		"dbname":  "newsclip",
		"sslmode": "disable",
	})

	viper.SetDefault("ingest", map[string]any{
		"workers":       defaultIngestWorkers,
		"fetch_timeout": defaultIngestFetchLimit.String(),
		"user_agent":    "",
		"sources_file":  defaultSourcesFile,
	})

	viper.SetDefault("scheduler", map[string]any{
		"enabled": true,
		"tick":    defaultSchedulerTick.String(),
	})
}

// bindEnvironmentVariables binds all environment variables to config keys.
func bindEnvironmentVariables() error {
	bindings := map[string][]string{
		"app.environment":   {"APP_ENV"},
		"app.debug":         {"APP_DEBUG"},
		"logger.level":      {"LOG_LEVEL"},
		"logger.encoding":   {"LOG_FORMAT"},
		"server.address":    {"SERVER_ADDRESS"},
		"database.host":     {"DATABASE_HOST", "POSTGRES_HOST"},
		"database.port":     {"DATABASE_PORT", "POSTGRES_PORT"},
		"database.user":     {"DATABASE_USER", "POSTGRES_USER"},
		"database.password": {"DATABASE_PASSWORD", "POSTGRES_PASSWORD"},
		"database.dbname":   {"DATABASE_NAME", "POSTGRES_DB"},
		"database.sslmode":  {"DATABASE_SSLMODE"},
		"ingest.workers":    {"INGEST_WORKERS"},
		"ingest.user_agent": {"INGEST_USER_AGENT"},
		"scheduler.enabled": {"SCHEDULER_ENABLED"},
		"scheduler.tick":    {"SCHEDULER_TICK"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	return nil
}

// setupDevelopmentLogging configures logging settings based on environment
// variables. Debug level is controlled by APP_DEBUG, development formatting
// by APP_ENV.
func setupDevelopmentLogging() {
	if viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
	}

	if viper.GetString("app.environment") == "development" {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}
}
