package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures the rotating log file. An empty Path keeps output on stderr.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// New creates a text logger on stderr at the given level.
// Stdout is left to program output.
func New(level string) *slog.Logger {
	return NewWithOutput(level, os.Stderr)
}

// NewWithFile creates a logger writing to a rotating file, or to stderr when no path is set.
// The returned closer releases the file and is never nil.
func NewWithFile(level string, opts FileOptions) (*slog.Logger, io.Closer) {
	if opts.Path == "" {
		return New(level), io.NopCloser(nil)
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}
	return NewWithOutput(level, rotator), rotator
}

// NewWithOutput creates a text logger writing to w.
func NewWithOutput(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
