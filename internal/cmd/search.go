package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/minigrep/internal/config"
	"github.com/harrison/minigrep/internal/history"
	"github.com/harrison/minigrep/internal/logger"
	"github.com/harrison/minigrep/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the 'minigrep search' command (literal substring matching)
func NewSearchCommand() *cobra.Command {
	return newSearchCommand(search.ModeLiteral,
		"Search a file for lines containing a literal string",
		`Search a file for lines containing the pattern as a plain substring.

Examples:
  # Print matching lines to the console
  minigrep search to poem.txt

  # Case-insensitive, results written to a file
  minigrep search -i rUsT poem.txt matches.txt

  # Same, using the environment
  IGNORE_CASE=1 minigrep search rUsT poem.txt`)
}

// NewRegexCommand creates the 'minigrep regex' command (regular expression matching)
func NewRegexCommand() *cobra.Command {
	return newSearchCommand(search.ModeRegex,
		"Search a file for lines matching a regular expression",
		`Search a file for lines matching the pattern as a regular expression
(RE2 syntax). A line matches when the expression matches anywhere in it;
use ^ and $ to anchor.

Examples:
  # Lines that start with a capital letter
  minigrep regex '^[A-Z]' poem.txt

  # Error codes, any case
  minigrep regex -i 'error[0-9]+' app.log errors.txt`)
}

func newSearchCommand(mode search.Mode, short, long string) *cobra.Command {
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   mode.String() + " <pattern> <file> [output-file]",
		Short: short,
		Long:  long,
		Args:  searchArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, mode, args, ignoreCase)
		},
	}

	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match without regard to case")

	return cmd
}

// searchArgs checks the positional arguments before any config or file is touched.
func searchArgs(cmd *cobra.Command, args []string) error {
	switch {
	case len(args) == 0:
		return fmt.Errorf("didn't get a query string")
	case len(args) == 1:
		return fmt.Errorf("didn't get a file path")
	case len(args) > 3:
		return fmt.Errorf("too many arguments: expected <pattern> <file> [output-file], got %d", len(args))
	}
	return nil
}

// runSearch executes one search invocation
func runSearch(cmd *cobra.Command, mode search.Mode, args []string, ignoreCaseFlag bool) error {
	cfg, home, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.MergeWithFlags(&ignoreCaseFlag, nil, nil, nil, nil)

	searchCfg := search.SearchConfig{
		Pattern:    args[0],
		Mode:       mode,
		IgnoreCase: cfg.IgnoreCase,
		SourcePath: args[1],
	}
	if len(args) == 3 {
		searchCfg.Destination = args[2]
	}

	runID := uuid.NewString()

	consoleLog := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if !cfg.Color {
		consoleLog.SetColor(false)
	}
	loggers := []logger.Logger{consoleLog}
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel, runID)
		if err != nil {
			consoleLog.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			defer fileLog.Close()
			loggers = append(loggers, fileLog)
			consoleLog.LogDebug(fmt.Sprintf("run log: %s", fileLog.Path()))
		}
	}
	log := logger.NewMultiLogger(loggers...)

	searcher := search.NewSearcher(log, cmd.OutOrStdout(), cfg.Color)

	start := time.Now()
	result, runErr := searcher.Run(searchCfg)
	duration := time.Since(start)

	summary := logger.Summary{
		RunID:       runID,
		Mode:        mode.String(),
		Pattern:     searchCfg.Pattern,
		IgnoreCase:  searchCfg.IgnoreCase,
		Source:      searchCfg.SourcePath,
		Destination: searchCfg.Destination,
		Duration:    duration,
		Err:         runErr,
	}
	if result != nil {
		summary.Matches = result.Matches
		summary.LinesScanned = result.LinesScanned
	}
	log.LogSummary(summary)

	if cfg.History.Enabled {
		recordHistory(cmd.Context(), cfg, home, summary, log)
	}

	return describeSearchError(runErr, searchCfg, summary.Matches, log)
}

// describeSearchError adds CLI context to an engine error. Partial output in
// a destination file is reported, and a regex that fails to compile gets a
// pointer to literal search.
func describeSearchError(err error, cfg search.SearchConfig, written int, log logger.Logger) error {
	switch {
	case err == nil:
		return nil
	case search.IsIOError(err):
		if cfg.Destination != "" && written > 0 {
			log.LogWarn(fmt.Sprintf("%d match(es) written to %s before the error were kept", written, cfg.Destination))
		}
		return err
	case search.IsPatternError(err) && cfg.Mode == search.ModeRegex && cfg.Pattern != "":
		return fmt.Errorf("%w (use 'minigrep search' to match it as plain text)", err)
	default:
		return err
	}
}

// recordHistory stores summary in the history database. Failures are logged
// as warnings and never change the outcome of the search.
func recordHistory(ctx context.Context, cfg *config.Config, home string, summary logger.Summary, log logger.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := history.NewStore(config.HistoryDBPath(cfg, home))
	if err != nil {
		log.LogWarn(fmt.Sprintf("search history unavailable: %v", err))
		return
	}
	defer store.Close()

	rec := &history.Record{
		RunID:        summary.RunID,
		Mode:         summary.Mode,
		Pattern:      summary.Pattern,
		IgnoreCase:   summary.IgnoreCase,
		Source:       summary.Source,
		Destination:  summary.Destination,
		Matches:      summary.Matches,
		LinesScanned: summary.LinesScanned,
		Status:       history.StatusSuccess,
		Duration:     summary.Duration,
	}
	if summary.Err != nil {
		rec.Status = history.StatusFailed
		rec.Error = summary.Err.Error()
	}

	if err := store.Record(ctx, rec); err != nil {
		log.LogWarn(fmt.Sprintf("failed to record search history: %v", err))
		return
	}

	removed, err := store.Prune(ctx, cfg.History.KeepDays)
	if err != nil {
		log.LogWarn(fmt.Sprintf("failed to prune search history: %v", err))
		return
	}
	if removed > 0 {
		log.LogDebug(fmt.Sprintf("pruned %d history record(s) older than %d days", removed, cfg.History.KeepDays))
	}
}
