// Package config loads the agent process configuration from the environment
// and the operator printing settings from a YAML file. Environment variables
// cover process concerns (port, paths, timeouts); the settings file covers
// printing behavior and can change while the agent runs.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process-level agent configuration
type Config struct {
	Port           int           // HTTP listen port
	ExportDir      string        // where PDF exports land
	SeenPath       string        // seen-devices JSON store
	SettingsPath   string        // operator settings YAML
	AttemptTimeout time.Duration // per transport try
	RetryBackoff   time.Duration // between tries on one transport
	LogLevel       string
	ChromePath     string // explicit Chrome/Chromium binary, empty autodetects
	TUI            bool   // run the operator terminal UI
}

// Load reads configuration from environment variables, honoring a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvAsInt("WILPOS_PORT", 9123),
		ExportDir:      getEnv("WILPOS_EXPORT_DIR", "exports"),
		SeenPath:       getEnv("WILPOS_SEEN_PATH", "seen-devices.json"),
		SettingsPath:   getEnv("WILPOS_SETTINGS_PATH", "settings.yaml"),
		AttemptTimeout: getEnvAsDuration("WILPOS_ATTEMPT_TIMEOUT", 10*time.Second),
		RetryBackoff:   getEnvAsDuration("WILPOS_RETRY_BACKOFF", 300*time.Millisecond),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ChromePath:     getEnv("WILPOS_CHROME_PATH", ""),
		TUI:            getEnvAsBool("WILPOS_TUI", false),
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsDuration parses a Go duration string ("10s", "300ms")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
