package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	clog "github.com/charmbracelet/log"
)

// Setup builds the rotating logger for cfg and a slog.Logger that writes
// through it. With cfg.WriteToStderr the records are also printed to stderr.
func Setup(cfg Config, opts ...Option) (*slog.Logger, *RotatingLogger, error) {
	rl, err := New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}

	level := parseLevel(rl.Config().Level)
	var handler slog.Handler = NewHandler(rl, &HandlerOptions{Level: level})

	if cfg.WriteToStderr {
		handler = fanout{handler, NewConsoleHandler(os.Stderr, level)}
	}

	return slog.New(handler), rl, nil
}

// NewConsoleHandler returns a human-readable handler for terminals.
func NewConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	return clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		Level:           consoleLevel(level),
	})
}

// SetupDefault runs Setup and installs the result as the slog default.
func SetupDefault(cfg Config, opts ...Option) (*RotatingLogger, error) {
	logger, rl, err := Setup(cfg, opts...)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return rl, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	return LevelFromString(level).SlogLevel()
}

func consoleLevel(level slog.Level) clog.Level {
	l, err := clog.ParseLevel(strings.ToLower(LevelFromSlog(level).String()))
	if err != nil {
		return clog.InfoLevel
	}
	return l
}

// fanout sends each record to every handler that accepts it.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
