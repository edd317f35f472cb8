package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns the application's default paths. Environment variables
// take precedence over the XDG-style fallbacks:
//   - RAWDB_CONFIG_PATH: config file location (default: ~/.config/rawdb.toml)
//   - RAWDB_HOME: base directory for rawdb data (default: ~/.local/share/rawdb)
//   - RAWDB_SOURCE_DIR: camera mount point used by `config init` when no
//     source directory argument is given (no fallback; cameras mount anywhere)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("RAWDB_CONFIG_PATH", ".config", "rawdb.toml")
	if err != nil {
		return nil, err
	}

	baseDir, err := envOrHome("RAWDB_HOME", ".local", "share", "rawdb")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"source_dir":  os.Getenv("RAWDB_SOURCE_DIR"),
	}, nil
}

// envOrHome returns the value of env when set, otherwise the path built from
// the segments relative to the user's home directory.
func envOrHome(env string, segments ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, segments...)...), nil
}
