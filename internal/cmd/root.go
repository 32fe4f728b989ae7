package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for minigrep
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minigrep",
		Short: "Search a file for lines matching a pattern",
		Long: `minigrep scans a text file line by line and reports every line that
matches a literal substring or a regular expression.

Matching lines are printed as "Line <n>: <text>" to the console, or written
to an output file when one is given. Set IGNORE_CASE in the environment (or
pass --ignore-case) to match without regard to case.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once as "Error: <msg>"
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file (default: $MINIGREP_HOME/config.yaml)")
	cmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("no-history", false, "Do not record this search in the history database")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewRegexCommand())
	cmd.AddCommand(NewHistoryCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
