package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by SearchConfig.Validate for malformed configurations.
var ErrInvalidConfig = errors.New("invalid search configuration")

// ErrDestinationIsSource is wrapped by the *IOError returned when the output
// file is the file being searched.
var ErrDestinationIsSource = errors.New("destination is the source file")

// PatternError reports a pattern that cannot be used for matching,
// typically a regular expression that fails to compile.
type PatternError struct {
	Pattern string // Pattern text as supplied by the caller
	Err     error  // Underlying compile error (optional)
}

// Error implements the error interface for PatternError.
func (e *PatternError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("invalid pattern %q", e.Pattern))
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *PatternError) Unwrap() error {
	return e.Err
}

// IOError reports a failure to open, read, write or close the source or the sink.
type IOError struct {
	Op   string // What was being attempted, e.g. "cannot open source"
	Path string // File involved, empty for the console
	Err  error  // Underlying error
}

// Error implements the error interface for IOError.
func (e *IOError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf(" %s", e.Path))
	}
	if e.Err != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Err))
	}
	return sb.String()
}

// Unwrap returns the underlying error for error wrapping support.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsPatternError reports whether err is or wraps a *PatternError.
func IsPatternError(err error) bool {
	var pe *PatternError
	return errors.As(err, &pe)
}

// IsIOError reports whether err is or wraps an *IOError.
func IsIOError(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe)
}
