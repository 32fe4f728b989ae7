package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the minigrep home directory.
const HomeEnv = "MINIGREP_HOME"

// GetHome returns the minigrep home directory
// Priority order:
//  1. MINIGREP_HOME environment variable (if set)
//  2. ~/.minigrep
//  3. ./.minigrep (when the user home cannot be determined)
//
// The directory is created if it doesn't exist
func GetHome() (string, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = ""
	}
	return GetHomeWithRoot(userHome)
}

// GetHomeWithRoot is GetHome with an explicit root instead of the user home.
// An empty root falls back to the current working directory.
func GetHomeWithRoot(root string) (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		if err := os.MkdirAll(home, 0755); err != nil {
			return "", fmt.Errorf("create minigrep home directory: %w", err)
		}
		return home, nil
	}

	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	home := filepath.Join(root, ".minigrep")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create minigrep home directory: %w", err)
	}

	return home, nil
}

// HistoryDBPath resolves the history database path for cfg.
// An explicit db_path wins; otherwise it is <home>/history.db.
func HistoryDBPath(cfg *Config, home string) string {
	if cfg.History.DBPath != "" {
		return cfg.History.DBPath
	}
	return filepath.Join(home, "history.db")
}
