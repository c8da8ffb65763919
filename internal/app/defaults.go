package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// envPaths holds the path overrides read from the environment.
type envPaths struct {
	ConfigPath string `env:"GT_CONFIG_PATH"`
	Home       string `env:"GT_HOME"`
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - GT_CONFIG_PATH: config file location (default: ~/.config/gt.toml)
//   - GT_HOME: base directory for gt data (default: ~/.local/share/gt)
func GetDefaults() (map[string]string, error) {
	var paths envPaths
	if err := env.Parse(&paths); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	configPath := paths.ConfigPath
	baseDir := paths.Home
	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "gt.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "gt")
		}
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}
