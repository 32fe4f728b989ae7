package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether a single line matches.
type Matcher interface {
	Match(line string) bool
}

// literalMatcher reports lines containing pattern as a contiguous substring.
type literalMatcher struct {
	pattern string
}

func (m *literalMatcher) Match(line string) bool {
	return strings.Contains(line, m.pattern)
}

// foldedLiteralMatcher lowercases each line and compares it against a
// pattern lowercased once at construction.
type foldedLiteralMatcher struct {
	lowered string
}

func (m *foldedLiteralMatcher) Match(line string) bool {
	return strings.Contains(strings.ToLower(line), m.lowered)
}

// regexMatcher reports lines where re finds a match anywhere.
// Case-insensitive regex matching is handled by the (?i) flag at compile time.
type regexMatcher struct {
	re *regexp.Regexp
}

func (m *regexMatcher) Match(line string) bool {
	return m.re.MatchString(line)
}

// NewMatcher builds the Matcher for the given mode and case sensitivity.
// An invalid regular expression yields a *PatternError; no I/O is performed.
func NewMatcher(pattern string, mode Mode, ignoreCase bool) (Matcher, error) {
	if pattern == "" {
		return nil, &PatternError{Pattern: pattern, Err: fmt.Errorf("pattern must not be empty")}
	}

	switch mode {
	case ModeLiteral:
		if ignoreCase {
			return &foldedLiteralMatcher{lowered: strings.ToLower(pattern)}, nil
		}
		return &literalMatcher{pattern: pattern}, nil

	case ModeRegex:
		expr := pattern
		if ignoreCase {
			expr = "(?i)" + pattern
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Pattern: pattern, Err: err}
		}
		return &regexMatcher{re: re}, nil

	default:
		return nil, &PatternError{Pattern: pattern, Err: fmt.Errorf("unknown mode %d", int(mode))}
	}
}
