package search

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/harrison/minigrep/internal/filelock"
	"github.com/mattn/go-isatty"
)

// Sink receives matched lines.
type Sink interface {
	// WriteMatch writes one "Line {number}: {text}" record followed by a newline.
	WriteMatch(number int, text string) error
	// Close releases the sink. It is safe to call once on every exit path.
	Close() error
}

// FormatMatch renders a matched line without its trailing newline.
func FormatMatch(number int, text string) string {
	return fmt.Sprintf("Line %d: %s", number, text)
}

// ConsoleSink writes matches to a stream, normally os.Stdout.
// The "Line N:" label is colored only when the stream is an interactive terminal.
type ConsoleSink struct {
	writer io.Writer
	label  *color.Color
}

// NewConsoleSink creates a ConsoleSink writing to w.
// colorEnabled allows coloring; it still only applies to terminals.
func NewConsoleSink(w io.Writer, colorEnabled bool) *ConsoleSink {
	s := &ConsoleSink{writer: w}
	if colorEnabled && isTerminal(w) {
		s.label = color.New(color.FgGreen)
		s.label.EnableColor()
	}
	return s
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// WriteMatch implements Sink.
func (s *ConsoleSink) WriteMatch(number int, text string) error {
	var record string
	if s.label != nil {
		record = s.label.Sprintf("Line %d:", number) + " " + text + "\n"
	} else {
		record = FormatMatch(number, text) + "\n"
	}

	if _, err := io.WriteString(s.writer, record); err != nil {
		return &IOError{Op: "write failed", Err: err}
	}
	return nil
}

// Close implements Sink. The console stream is not owned by the sink.
func (s *ConsoleSink) Close() error {
	return nil
}

// FileSink writes matches to a file that it creates or truncates.
// The file is locked for the lifetime of the sink so two searches cannot
// interleave their output in the same destination.
type FileSink struct {
	path string
	file *os.File
	lock *filelock.FileLock
}

// NewFileSink locks and truncates path. It fails with an *IOError when the
// destination is locked by another search or cannot be created.
func NewFileSink(path string) (*FileSink, error) {
	lock := filelock.NewFileLock(path)
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, &IOError{Op: "cannot open destination", Path: path, Err: err}
	}
	if !acquired {
		return nil, &IOError{Op: "cannot open destination", Path: path, Err: filelock.ErrLocked}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		lock.Unlock()
		return nil, &IOError{Op: "cannot open destination", Path: path, Err: err}
	}

	return &FileSink{path: path, file: file, lock: lock}, nil
}

// WriteMatch implements Sink. Each record goes straight to the file so a
// destination reflects every match found so far.
func (s *FileSink) WriteMatch(number int, text string) error {
	if s.file == nil {
		return &IOError{Op: "write failed", Path: s.path, Err: os.ErrClosed}
	}
	if _, err := s.file.WriteString(FormatMatch(number, text) + "\n"); err != nil {
		return &IOError{Op: "write failed", Path: s.path, Err: err}
	}
	return nil
}

// Close syncs and closes the file, then releases the lock.
func (s *FileSink) Close() error {
	if s.file == nil {
		return nil
	}

	var firstErr error
	if err := s.file.Sync(); err != nil {
		firstErr = &IOError{Op: "sync failed", Path: s.path, Err: err}
	}
	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = &IOError{Op: "close failed", Path: s.path, Err: err}
	}
	s.file = nil

	if err := s.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = &IOError{Op: "close failed", Path: s.path, Err: err}
	}
	return firstErr
}

// Path returns the destination path.
func (s *FileSink) Path() string {
	return s.path
}
