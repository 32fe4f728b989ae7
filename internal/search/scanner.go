package search

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Line is one line of the source with its terminator removed.
type Line struct {
	Number int // 1-based position in the source
	Text   string
}

// LineScanner produces the lines of a reader one at a time, in order.
// It is single-pass: once Next returns false the scanner is exhausted.
//
// Usage follows bufio.Scanner:
//
//	sc := NewLineScanner(f)
//	for sc.Next() {
//	    line := sc.Line()
//	}
//	if err := sc.Err(); err != nil { ... }
type LineScanner struct {
	reader *bufio.Reader
	name   string
	line   Line
	count  int
	err    error
	done   bool
}

// NewLineScanner wraps r. Lines are not limited in length.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{reader: bufio.NewReader(r)}
}

// newNamedLineScanner is NewLineScanner with a path used in error messages.
func newNamedLineScanner(r io.Reader, name string) *LineScanner {
	sc := NewLineScanner(r)
	sc.name = name
	return sc
}

// Next advances to the next line. It returns false at end of input or on error.
func (s *LineScanner) Next() bool {
	if s.done {
		return false
	}

	text, err := s.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		s.fail(&IOError{Op: "read failed", Path: s.name, Err: err})
		return false
	}
	if errors.Is(err, io.EOF) {
		s.done = true
		if text == "" {
			return false
		}
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	if !utf8.ValidString(text) {
		s.fail(&IOError{
			Op:   "read failed",
			Path: s.name,
			Err:  fmt.Errorf("line %d is not valid UTF-8", s.count+1),
		})
		return false
	}

	s.count++
	s.line = Line{Number: s.count, Text: text}
	return true
}

// Line returns the line produced by the most recent successful call to Next.
func (s *LineScanner) Line() Line {
	return s.line
}

// Err returns the first error that stopped the scan, or nil at a clean end of input.
func (s *LineScanner) Err() error {
	return s.err
}

// Count returns how many lines have been produced so far.
func (s *LineScanner) Count() int {
	return s.count
}

func (s *LineScanner) fail(err error) {
	s.err = err
	s.done = true
	s.line = Line{}
}
