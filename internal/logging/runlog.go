package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/shipway/shipway/internal/security"
)

// Level classifies a run-log line.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

const (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorReset  = "\033[0m"
)

// RunLog is the per-invocation deployment record. Every stage emits a
// colored status line to the console and an equivalent plain
// "[timestamp] LEVEL: message" line to an append-only file. Secrets
// registered with AddSecret are masked in both outputs.
type RunLog struct {
	console io.Writer
	file    io.Writer
	closer  io.Closer
	secrets []string
	now     func() time.Time
}

// Open creates a timestamped log file in dir (the working directory by
// default) and returns a RunLog writing to it and to stdout.
func Open(dir string) (*RunLog, error) {
	if dir == "" {
		dir = "."
	}
	name := fmt.Sprintf("shipway-%s.log", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log %s: %w", path, err)
	}

	return &RunLog{
		console: os.Stdout,
		file:    f,
		closer:  f,
		now:     time.Now,
	}, nil
}

// New builds a RunLog over explicit writers. Used by tests and by
// callers that manage the file themselves.
func New(console, file io.Writer) *RunLog {
	return &RunLog{console: console, file: file, now: time.Now}
}

// AddSecret registers a value to be masked in every emitted line.
func (l *RunLog) AddSecret(secret string) {
	if secret != "" {
		l.secrets = append(l.secrets, secret)
	}
}

// Close closes the underlying log file, if any.
func (l *RunLog) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// Info logs a progress line.
func (l *RunLog) Info(format string, args ...interface{}) {
	l.emit(LevelInfo, "ℹ️  ", "", format, args...)
}

// Success logs a completed-step line.
func (l *RunLog) Success(format string, args ...interface{}) {
	l.emit(LevelSuccess, "✅ ", colorGreen, format, args...)
}

// Warning logs a non-fatal problem.
func (l *RunLog) Warning(format string, args ...interface{}) {
	l.emit(LevelWarning, "⚠️  ", colorYellow, format, args...)
}

// Error logs a fatal problem. Termination is the caller's decision.
func (l *RunLog) Error(format string, args ...interface{}) {
	l.emit(LevelError, "❌ ", colorRed, format, args...)
}

func (l *RunLog) emit(level Level, prefix, color, format string, args ...interface{}) {
	msg := security.MaskSecrets(fmt.Sprintf(format, args...), l.secrets)

	if l.console != nil {
		if color != "" {
			fmt.Fprintf(l.console, "%s%s%s%s\n", color, prefix, msg, colorReset)
		} else {
			fmt.Fprintf(l.console, "%s%s\n", prefix, msg)
		}
	}
	if l.file != nil {
		ts := l.now().Format("2006-01-02 15:04:05")
		fmt.Fprintf(l.file, "[%s] %s: %s\n", ts, level, msg)
	}
}
