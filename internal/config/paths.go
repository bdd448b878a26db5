package config

import (
	"os"
	"path/filepath"
)

// DataDir returns the application data directory (~/.promptgate).
// PROMPTGATE_DATA_DIR overrides it, for tests and containers.
func DataDir() string {
	if dir := os.Getenv("PROMPTGATE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptgate"
	}
	return filepath.Join(home, ".promptgate")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}

// DBPath returns the path to the SQLite database file.
func DBPath() string {
	return filepath.Join(DataDir(), "promptgate.db")
}
