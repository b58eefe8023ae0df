// Package config loads vmscan's optional TOML configuration file. The
// file is never required: every field has a zero value that reproduces
// the CLI's documented defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the ~/.config/vmscan/config.toml shape.
type Config struct {
	// PageSize overrides the scanner's bounded buffer size. Zero means
	// "use scanner.DefaultPageSize".
	PageSize int `toml:"page_size,omitempty"`

	// LogLevel sets the default logrus level ("debug", "info", "warn",
	// "error"). Empty means "info".
	LogLevel string `toml:"log_level,omitempty"`
}

// DefaultPath returns the config file vmscan reads when --config is not
// given: $VMSCAN_CONFIG if set, else ~/.config/vmscan/config.toml.
func DefaultPath() string {
	if v := os.Getenv("VMSCAN_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "vmscan", "config.toml")
	}
	return filepath.Join(home, ".config", "vmscan", "config.toml")
}

// Load reads and parses path. A missing file is not an error: it returns
// a zero-value Config so callers fall back to documented defaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path) //nolint:gosec // path comes from a flag/env default, not untrusted input
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
