package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/harrison/minigrep/internal/config"
	"github.com/harrison/minigrep/internal/filelock"
	"github.com/harrison/minigrep/internal/history"
	"github.com/harrison/minigrep/internal/search"
	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the 'minigrep history' command and its subcommands
func NewHistoryCommand() *cobra.Command {
	var limit int
	var mode string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Long: `Show recent searches recorded in the history database, newest first.

History is stored in $MINIGREP_HOME/history.db unless history.db_path is
set in the config file. Pass --no-history to a search to skip recording it.

Examples:
  # Last 20 searches
  minigrep history

  # Only regex searches
  minigrep history --mode regex --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryList(cmd, limit, mode)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of searches to show (0 = all)")
	cmd.Flags().StringVar(&mode, "mode", "", "Only show searches of this mode (search|regex)")

	cmd.AddCommand(newHistoryClearCommand())
	cmd.AddCommand(newHistoryExportCommand())

	return cmd
}

// openHistoryStore opens the history database configured for cmd.
func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	store, err := history.NewStore(config.HistoryDBPath(cfg, home))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

func runHistoryList(cmd *cobra.Command, limit int, mode string) error {
	if limit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", limit)
	}

	var modeFilter string
	if mode != "" {
		parsed, err := search.ParseMode(mode)
		if err != nil {
			return err
		}
		modeFilter = parsed.String()
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	// the mode filter runs before the limit, so fetch everything when filtering
	fetchLimit := limit
	if modeFilter != "" {
		fetchLimit = 0
	}
	records, err := store.List(cmd.Context(), fetchLimit)
	if err != nil {
		return err
	}

	if modeFilter != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.Mode == modeFilter {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}
	}

	output := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(output, "No searches recorded.\n")
		fmt.Fprintf(output, "Database path: %s\n", store.Path())
		return nil
	}

	printHistory(output, records)
	return nil
}

// printHistory writes one line per record, newest first.
func printHistory(output io.Writer, records []*history.Record) {
	for _, rec := range records {
		flags := ""
		if rec.IgnoreCase {
			flags = " -i"
		}
		destination := ""
		if rec.Destination != "" {
			destination = " -> " + rec.Destination
		}

		fmt.Fprintf(output, "%s  %-6s%s %q %s%s  [%s, %d match(es) in %d line(s)]\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Mode,
			flags,
			rec.Pattern,
			rec.Source,
			destination,
			rec.Status,
			rec.Matches,
			rec.LinesScanned,
		)
		if rec.Error != "" {
			fmt.Fprintf(output, "    error: %s\n", rec.Error)
		}
	}
}

// newHistoryClearCommand creates the 'minigrep history clear' command
func newHistoryClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded searches",
		Long: `Delete every search from the history database (requires confirmation).

Examples:
  # Ask before deleting
  minigrep history clear

  # No prompt
  minigrep history clear --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runHistoryClear(cmd *cobra.Command, yes bool) error {
	output := cmd.OutOrStdout()

	if !yes {
		fmt.Fprintf(output, "WARNING: This will delete ALL recorded searches.\n")
		if !confirmAction(cmd.InOrStdin(), output) {
			fmt.Fprintf(output, "Operation cancelled.\n")
			return nil
		}
	}

	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Deleted %d search(es).\n", removed)
	return nil
}

// confirmAction prompts on output and reads a yes/no answer from input.
func confirmAction(input io.Reader, output io.Writer) bool {
	scanner := bufio.NewScanner(input)

	fmt.Fprintf(output, "Continue? [y/N]: ")

	if !scanner.Scan() {
		return false
	}

	response := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return response == "y" || response == "yes"
}

// newHistoryExportCommand creates the 'minigrep history export' command
func newHistoryExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.yaml>",
		Short: "Export recorded searches to a YAML file",
		Long: `Export every recorded search to a YAML file for backup or analysis.

The file is written atomically: readers never see a partially written export.

Examples:
  minigrep history export searches.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryExport(cmd, args[0])
		},
	}

	return cmd
}

func runHistoryExport(cmd *cobra.Command, path string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), 0)
	if err != nil {
		return err
	}

	data, err := history.MarshalYAML(records)
	if err != nil {
		return err
	}

	if err := filelock.AtomicWrite(path, data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d search(es) to %s\n", len(records), path)
	return nil
}
