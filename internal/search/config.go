package search

import (
	"fmt"
	"strings"
)

// Mode selects how the pattern is interpreted.
type Mode int

const (
	// ModeLiteral treats the pattern as a plain substring.
	ModeLiteral Mode = iota
	// ModeRegex compiles the pattern as a regular expression.
	ModeRegex
)

// String returns the CLI name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLiteral:
		return "search"
	case ModeRegex:
		return "regex"
	default:
		return "unknown"
	}
}

// ParseMode converts a CLI mode name ("search" or "regex") to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "search", "literal":
		return ModeLiteral, nil
	case "regex":
		return ModeRegex, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q, must be one of: search, regex", ErrInvalidConfig, name)
	}
}

// SearchConfig describes one search invocation. It is built once by the CLI
// layer and passed by value, so the engine never mutates it.
type SearchConfig struct {
	// Pattern is the literal text or regular expression to look for
	Pattern string

	// Mode selects literal or regex matching
	Mode Mode

	// IgnoreCase enables case-insensitive matching in either mode
	IgnoreCase bool

	// SourcePath is the file to scan
	SourcePath string

	// Destination is the output file; empty means the console
	Destination string
}

// Validate checks the configuration for values the engine cannot run with.
func (c SearchConfig) Validate() error {
	if c.Pattern == "" {
		return fmt.Errorf("%w: pattern must not be empty", ErrInvalidConfig)
	}
	if c.Mode != ModeLiteral && c.Mode != ModeRegex {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, int(c.Mode))
	}
	if c.SourcePath == "" {
		return fmt.Errorf("%w: source path must not be empty", ErrInvalidConfig)
	}
	return nil
}
