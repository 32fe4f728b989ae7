// Package search implements the minigrep matching-and-scanning engine.
//
// A search builds a Matcher from the pattern, streams the source file line by
// line through a LineScanner and writes every matching line to a Sink, either
// the console or a destination file. Errors are typed: *PatternError for
// patterns that cannot be compiled and *IOError for everything touching files
// or streams.
package search

import (
	"fmt"
	"io"
	"os"
)

// Logger is the diagnostic channel used for informational notices.
// It is kept separate from the Sink so notices never mix with results.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
}

// Notices emitted on the diagnostic channel.
const (
	NoticeConsoleOutput = "no output file given, results will be printed to the console"
	NoticeNoMatches     = "no matches found"
)

// Result summarizes a completed search.
type Result struct {
	AnyMatch     bool
	Matches      int
	LinesScanned int
}

// Searcher runs searches. The zero value writes console results to
// os.Stdout and discards notices.
type Searcher struct {
	// Logger receives notices; nil discards them
	Logger Logger

	// Stdout is the console stream; nil means os.Stdout
	Stdout io.Writer

	// Color enables colored labels on a terminal console
	Color bool
}

// NewSearcher creates a Searcher writing console results to stdout and
// notices to logger.
func NewSearcher(logger Logger, stdout io.Writer, colorEnabled bool) *Searcher {
	return &Searcher{
		Logger: logger,
		Stdout: stdout,
		Color:  colorEnabled,
	}
}

// Run executes one search described by cfg.
//
// The matcher is built before any file is touched, so an invalid pattern
// never truncates the destination. Matches are written as they are found;
// when a read or write fails, output already written is kept and the error
// is returned. Finding nothing is not an error.
func (s *Searcher) Run(cfg SearchConfig) (result *Result, err error) {
	if err := cfg.Validate(); err != nil {
		if cfg.Pattern == "" {
			return nil, &PatternError{Pattern: cfg.Pattern, Err: err}
		}
		return nil, err
	}

	matcher, err := NewMatcher(cfg.Pattern, cfg.Mode, cfg.IgnoreCase)
	if err != nil {
		return nil, err
	}
	s.debugf("matching %s pattern %q (ignore case: %t)", cfg.Mode, cfg.Pattern, cfg.IgnoreCase)

	source, err := os.Open(cfg.SourcePath)
	if err != nil {
		return nil, &IOError{Op: "cannot open source", Path: cfg.SourcePath, Err: err}
	}
	defer source.Close()

	if err := checkDestination(source, cfg.Destination); err != nil {
		return nil, err
	}

	sink, err := s.openSink(cfg.Destination)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	result = &Result{}
	scanner := newNamedLineScanner(source, cfg.SourcePath)
	for scanner.Next() {
		line := scanner.Line()
		if !matcher.Match(line.Text) {
			continue
		}
		if err := sink.WriteMatch(line.Number, line.Text); err != nil {
			result.LinesScanned = scanner.Count()
			return result, err
		}
		result.AnyMatch = true
		result.Matches++
	}
	result.LinesScanned = scanner.Count()

	if err := scanner.Err(); err != nil {
		return result, err
	}

	if !result.AnyMatch {
		s.info(NoticeNoMatches)
	}
	s.debugf("scanned %d lines, %d matched", result.LinesScanned, result.Matches)

	return result, nil
}

// checkDestination rejects a destination that resolves to the open source
// file, which the file sink would truncate before it is read. Links to the
// source are caught too. A destination that does not exist yet is fine.
func checkDestination(source *os.File, destination string) error {
	if destination == "" {
		return nil
	}

	destInfo, err := os.Stat(destination)
	if err != nil {
		return nil
	}
	sourceInfo, err := source.Stat()
	if err != nil {
		return &IOError{Op: "cannot open source", Path: source.Name(), Err: err}
	}
	if os.SameFile(sourceInfo, destInfo) {
		return &IOError{Op: "cannot open destination", Path: destination, Err: ErrDestinationIsSource}
	}
	return nil
}

// openSink picks the file sink when a destination is set, the console otherwise.
func (s *Searcher) openSink(destination string) (Sink, error) {
	if destination != "" {
		sink, err := NewFileSink(destination)
		if err != nil {
			return nil, err
		}
		s.debugf("writing results to %s", sink.Path())
		return sink, nil
	}

	s.info(NoticeConsoleOutput)
	stdout := s.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return NewConsoleSink(stdout, s.Color), nil
}

func (s *Searcher) info(message string) {
	if s.Logger != nil {
		s.Logger.LogInfo(message)
	}
}

func (s *Searcher) debugf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.LogDebug(fmt.Sprintf(format, args...))
	}
}
