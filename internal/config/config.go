package config

import (
	"os"
	"strconv"
	"time"
)

// defaultModels are the built-in default provider's known-good candidates,
// tried in order after every stored provider has failed.
var defaultModels = []string{
	"meta-llama/llama-3.3-70b-instruct",
	"google/gemini-2.0-flash-001",
	"mistralai/mistral-small-3.1-24b-instruct",
}

const defaultBaseURL = "https://openrouter.ai/api/v1"

// Config holds application configuration loaded from environment and file.
// Priority: Env vars → config.toml → defaults
type Config struct {
	// ServerPort is the address to bind the server to (e.g., ":8080")
	ServerPort string

	// DBPath locates the SQLite database.
	DBPath string

	// Rate limit for the assist endpoint
	RateLimitCeiling int
	RateLimitWindow  time.Duration

	// RetryBackoff scales the linear per-provider retry backoff.
	RetryBackoff time.Duration

	// Built-in default provider
	DefaultBaseURL string
	DefaultAPIKey  string
	DefaultModels  []string
}

// Load reads configuration from file and environment variables.
// Environment variables override file config values.
func Load() *Config {
	fileConfig, _ := LoadFile() // Ignore error, use defaults

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", fileConfig.ServerPort, ":8080"),
		DBPath:           getEnv("PROMPTGATE_DB_PATH", "", DBPath()),
		RateLimitCeiling: 10,
		RateLimitWindow:  60 * time.Second,
		RetryBackoff:     500 * time.Millisecond,
		DefaultBaseURL:   defaultBaseURL,
		DefaultAPIKey:    os.Getenv("PROMPTGATE_DEFAULT_API_KEY"),
		DefaultModels:    defaultModels,
	}

	if rl := fileConfig.RateLimit; rl != nil {
		if rl.Ceiling > 0 {
			cfg.RateLimitCeiling = rl.Ceiling
		}
		if rl.WindowSeconds > 0 {
			cfg.RateLimitWindow = time.Duration(rl.WindowSeconds) * time.Second
		}
	}
	if r := fileConfig.Retry; r != nil && r.BackoffMs > 0 {
		cfg.RetryBackoff = time.Duration(r.BackoffMs) * time.Millisecond
	}
	if d := fileConfig.Default; d != nil {
		if d.BaseURL != "" {
			cfg.DefaultBaseURL = d.BaseURL
		}
		if len(d.Models) > 0 {
			cfg.DefaultModels = d.Models
		}
	}

	if n := getEnvInt("RATE_LIMIT_CEILING"); n > 0 {
		cfg.RateLimitCeiling = n
	}
	if n := getEnvInt("RATE_LIMIT_WINDOW_SECONDS"); n > 0 {
		cfg.RateLimitWindow = time.Duration(n) * time.Second
	}

	return cfg
}

// getEnv returns env value, file value, or default (in priority order)
func getEnv(key, fileValue, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

// getEnvInt returns the env value as an int, or 0 if unset or invalid.
func getEnvInt(key string) int {
	value := os.Getenv(key)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
