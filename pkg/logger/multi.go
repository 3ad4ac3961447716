package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Multi returns a logger that hands every record to each of loggers, each
// filtering by its own level. Nil loggers are skipped; with a single logger
// left, it is returned as is.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var fan fanout
	var last *slog.Logger
	for _, l := range loggers {
		if l == nil {
			continue
		}
		fan = append(fan, l.Handler())
		last = l
	}

	switch len(fan) {
	case 0:
		return Nop()
	case 1:
		return last
	default:
		return slog.New(fan)
	}
}

// fanout is a slog.Handler over several handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

// Handle gives every enabled handler its own copy of r and reports all their
// errors, so a failing log file does not silence stderr.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
