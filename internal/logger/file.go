package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// FileLogger writes one log file per search run into a log directory and
// keeps a latest.log symlink pointing at the most recent run.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to logDir.
// The directory is created if needed. The run file is named
// run-YYYYMMDD-HHMMSS-<runID prefix>.log so runs in the same second do not collide.
func NewFileLogger(logDir, logLevel, runID string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	name := "run-" + time.Now().Format("20060102-150405")
	if runID != "" {
		short := runID
		if len(short) > 8 {
			short = short[:8]
		}
		name += "-" + short
	}
	runFile := filepath.Join(logDir, name+".log")

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== minigrep run log ===\n")
	if runID != "" {
		logger.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	}
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return logger, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message.
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogSummary records the search parameters and outcome regardless of level.
func (fl *FileLogger) LogSummary(summary Summary) {
	status := "SUCCESS"
	if summary.Err != nil {
		status = "FAILED"
	}

	destination := summary.Destination
	if destination == "" {
		destination = "<console>"
	}

	ts := timestamp()
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\n[%s] === SEARCH SUMMARY ===\n", ts))
	sb.WriteString(fmt.Sprintf("[%s] Mode:          %s\n", ts, summary.Mode))
	sb.WriteString(fmt.Sprintf("[%s] Pattern:       %q\n", ts, summary.Pattern))
	sb.WriteString(fmt.Sprintf("[%s] Ignore case:   %t\n", ts, summary.IgnoreCase))
	sb.WriteString(fmt.Sprintf("[%s] Source:        %s\n", ts, summary.Source))
	sb.WriteString(fmt.Sprintf("[%s] Destination:   %s\n", ts, destination))
	sb.WriteString(fmt.Sprintf("[%s] Lines scanned: %d\n", ts, summary.LinesScanned))
	sb.WriteString(fmt.Sprintf("[%s] Matches:       %d\n", ts, summary.Matches))
	sb.WriteString(fmt.Sprintf("[%s] Duration:      %s\n", ts, formatDuration(summary.Duration)))
	sb.WriteString(fmt.Sprintf("[%s] Status:        %s\n", ts, status))
	if summary.Err != nil {
		sb.WriteString(fmt.Sprintf("[%s] Error:         %v\n", ts, summary.Err))
	}

	fl.writeRunLog(sb.String())
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}

	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
