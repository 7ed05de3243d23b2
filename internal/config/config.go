package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the client.
type Config struct {
	// APIBase is the base URL of the DevConnect backend.
	APIBase string

	// DataDir is where the session file and the local post cache live.
	DataDir string

	// HTTPTimeout bounds every API request.
	HTTPTimeout time.Duration
}

// CachePath returns the path of the local post cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Load reads configuration from environment variables with sensible
// defaults. The data directory is created if missing.
func Load() (*Config, error) {
	apiBase := os.Getenv("DEVCONNECT_API_BASE")
	if apiBase == "" {
		apiBase = "http://localhost:4000"
	}

	dataDir := os.Getenv("DEVCONNECT_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".devconnect")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	timeout := 30 * time.Second
	if t := os.Getenv("DEVCONNECT_HTTP_TIMEOUT"); t != "" {
		secs, err := strconv.Atoi(t)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid DEVCONNECT_HTTP_TIMEOUT: %q", t)
		}
		timeout = time.Duration(secs) * time.Second
	}

	return &Config{
		APIBase:     apiBase,
		DataDir:     dataDir,
		HTTPTimeout: timeout,
	}, nil
}
