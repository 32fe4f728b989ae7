package cmd

import (
	"fmt"
	"os"

	"github.com/harrison/minigrep/internal/config"
	"github.com/spf13/cobra"
)

// dotEnvFile is loaded from the working directory before the environment is read.
const dotEnvFile = ".env"

// loadConfig builds the effective configuration for cmd.
// Precedence, lowest first: defaults, config file, environment, flags.
// It returns the config together with the resolved minigrep home.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return nil, "", err
	}

	home, err := config.GetHome()
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve minigrep home: %w", err)
	}

	var cfg *config.Config
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, "", fmt.Errorf("config file %s: %w", configPath, err)
		}
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(home)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)

	var logLevelPtr *string
	var colorPtr *bool
	var historyPtr *bool

	if cmd.Flags().Changed("log-level") {
		logLevel, _ := cmd.Flags().GetString("log-level")
		logLevelPtr = &logLevel
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		debug := "debug"
		logLevelPtr = &debug
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		colorOff := false
		colorPtr = &colorOff
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); noHistory {
		historyOff := false
		historyPtr = &historyOff
	}

	cfg.MergeWithFlags(nil, logLevelPtr, nil, colorPtr, historyPtr)

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, home, nil
}
