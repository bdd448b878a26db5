package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file structure.
type FileConfig struct {
	ServerPort string `toml:"server_port"`

	RateLimit *RateLimitConfig `toml:"rate_limit"`
	Retry     *RetryConfig     `toml:"retry"`
	Default   *DefaultConfig   `toml:"default"`
}

// RateLimitConfig bounds the per-client request rate on the assist endpoint.
type RateLimitConfig struct {
	Ceiling       int `toml:"ceiling"`
	WindowSeconds int `toml:"window_seconds"`
}

// RetryConfig tunes the per-provider transient retry behavior.
type RetryConfig struct {
	BackoffMs int `toml:"backoff_ms"`
}

// DefaultConfig describes the built-in last-resort provider tried after the
// stored chain is exhausted. The API key comes from the environment, never
// the file.
type DefaultConfig struct {
	BaseURL string   `toml:"base_url"`
	Models  []string `toml:"models"`
}

// ConfigPath returns the path to the config file (~/.promptgate/config.toml).
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadFile loads configuration from the TOML file.
// Returns an empty FileConfig if the file doesn't exist.
func LoadFile() (*FileConfig, error) {
	cfg := &FileConfig{}

	path := ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureConfigFile creates a default config file with commented examples if none exists.
func EnsureConfigFile() error {
	path := ConfigPath()

	// If config already exists, do nothing
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := EnsureDataDir(); err != nil {
		return err
	}

	defaultConfig := `# promptgate configuration
# server_port = ":8080"

# Per-client rate limit on /api/assist (chat and test modes)
# [rate_limit]
# ceiling = 10
# window_seconds = 60

# Per-provider transient retry backoff
# [retry]
# backoff_ms = 500

# Built-in default provider, tried after every stored provider fails.
# The API key is read from PROMPTGATE_DEFAULT_API_KEY.
# [default]
# base_url = "https://openrouter.ai/api/v1"
# models = ["meta-llama/llama-3.3-70b-instruct", "google/gemini-2.0-flash-001", "mistralai/mistral-small"]
`

	return os.WriteFile(path, []byte(defaultConfig), 0644)
}
