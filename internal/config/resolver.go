package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the configuration file looked up in each search directory.
const FileName = "abridge.yaml"

// SearchPaths returns the candidate config locations in priority order:
// $XDG_CONFIG_HOME/abridge (or ~/.config/abridge), then the working
// directory.
func SearchPaths() []string {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "abridge", FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "abridge", FileName))
	}

	return append(candidates, FileName)
}

// Find returns the first existing search path, or "" when there is none.
func Find() string {
	for _, path := range SearchPaths() {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Resolve builds the effective configuration: .env, then the YAML file,
// then environment overrides, then defaults. An explicit path must exist;
// without one the search paths are tried and a missing file is fine. The
// returned path is empty when no file was read.
func Resolve(explicit string) (*Config, string, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}

	path := explicit
	if path == "" {
		path = Find()
	}

	cfg := &Config{}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	cfg.Defaults()
	return cfg, path, nil
}

// Describe returns a human-readable origin for the resolved config.
func Describe(path string) string {
	if path == "" {
		return fmt.Sprintf("defaults and environment (no %s found)", FileName)
	}
	return path
}
