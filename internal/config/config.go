package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/minigrep/internal/logger"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// IgnoreCaseEnv forces case-insensitive matching when set to any value.
const IgnoreCaseEnv = "IGNORE_CASE"

// ConfigFileName is the config file looked up inside the minigrep home.
const ConfigFileName = "config.yaml"

// HistoryConfig represents search history configuration
type HistoryConfig struct {
	// Enabled records every search in the history database
	Enabled bool `yaml:"enabled"`

	// DBPath is the path to the history database (empty = <home>/history.db)
	DBPath string `yaml:"db_path"`

	// KeepDays prunes records older than this many days (0 = keep forever)
	KeepDays int `yaml:"keep_days"`
}

// Config represents minigrep configuration options
type Config struct {
	// IgnoreCase makes every search case-insensitive
	IgnoreCase bool `yaml:"ignore_case"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir enables per-run log files in this directory when non-empty
	LogDir string `yaml:"log_dir"`

	// Color enables colored output on terminals
	Color bool `yaml:"color"`

	// History contains search history configuration
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		IgnoreCase: false,
		LogLevel:   "info",
		LogDir:     "",
		Color:      true,
		History: HistoryConfig{
			Enabled:  true,
			DBPath:   "",
			KeepDays: 30,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A second decode into a map tells explicit false/0 apart from absent keys
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if _, exists := rawMap["ignore_case"]; exists {
		cfg.IgnoreCase = fileCfg.IgnoreCase
	}
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if _, exists := rawMap["color"]; exists {
		cfg.Color = fileCfg.Color
	}

	if historySection, exists := rawMap["history"]; exists && historySection != nil {
		historyMap, _ := historySection.(map[string]interface{})

		if _, exists := historyMap["enabled"]; exists {
			cfg.History.Enabled = fileCfg.History.Enabled
		}
		if _, exists := historyMap["db_path"]; exists {
			cfg.History.DBPath = fileCfg.History.DBPath
		}
		if _, exists := historyMap["keep_days"]; exists {
			cfg.History.KeepDays = fileCfg.History.KeepDays
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from config.yaml in the specified directory.
// If the directory or file doesn't exist, returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ConfigFileName))
}

// LoadDotEnv loads KEY=value pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides using lookup (normally os.LookupEnv).
// IGNORE_CASE only needs to be present; its value is not inspected.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if _, ok := lookup(IgnoreCaseEnv); ok {
		c.IgnoreCase = true
	}
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(ignoreCase *bool, logLevel *string, logDir *string, color *bool, history *bool) {
	if ignoreCase != nil && *ignoreCase {
		// the flag can only turn case folding on
		c.IgnoreCase = true
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if color != nil {
		c.Color = *color
	}
	if history != nil {
		c.History.Enabled = *history
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: %s", c.LogLevel, strings.Join(logger.ValidLevels, ", "))
	}

	if c.History.KeepDays < 0 {
		return fmt.Errorf("history.keep_days must be >= 0, got %d", c.History.KeepDays)
	}

	return nil
}
