// Package logger builds the *slog.Logger values ragdesk passes around.
// Commands log to stderr through charmbracelet/log; --log-file adds a JSON
// copy of every record, debug level included.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type format int

const (
	formatText format = iota
	formatPretty
	formatJSON
)

type config struct {
	level  slog.Level
	format format
	source bool
	w      io.Writer
}

// New builds a logger from opts. Without options it writes slog text records
// at Info level to os.Stderr, keeping stdout free for command output.
func New(opts ...Option) *slog.Logger {
	c := &config{
		level: slog.LevelInfo,
		w:     os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     c.level,
		AddSource: c.source,
	}

	switch c.format {
	case formatJSON:
		return slog.New(slog.NewJSONHandler(c.w, handlerOpts))
	case formatPretty:
		return slog.New(charmlog.NewWithOptions(c.w, charmlog.Options{
			Level:           charmLevel(c.level),
			ReportTimestamp: true,
			ReportCaller:    c.source,
		}))
	default:
		return slog.New(slog.NewTextHandler(c.w, handlerOpts))
	}
}

// CLI returns the logger a command writes to w, normally its stderr. Debug
// mode lowers the level to Debug and reports the caller of each record.
func CLI(w io.Writer, debug bool) *slog.Logger {
	return New(
		WithWriter(w),
		WithPretty(true),
		WithDebug(debug),
		WithSource(debug),
	)
}

// OpenFile opens path for appending (creating it 0600) and returns a JSON
// logger that records everything from Debug up. The caller closes the file.
func OpenFile(path string) (*slog.Logger, *os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	l := New(
		WithWriter(f),
		WithJSON(true),
		WithDebug(true),
		WithSource(true),
	)
	return l, f, nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func charmLevel(level slog.Level) charmlog.Level {
	switch {
	case level <= slog.LevelDebug:
		return charmlog.DebugLevel
	case level <= slog.LevelInfo:
		return charmlog.InfoLevel
	case level <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
