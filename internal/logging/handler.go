package logging

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// SourceKey is the slog attribute that selects the record source.
const SourceKey = "source"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum enabled level (default: info).
	Level slog.Leveler
	// Source labels records without a "source" attribute.
	// Empty means the logger's default source.
	Source string
}

// Handler is a slog.Handler that writes through a RotatingLogger. Attributes
// other than "source" are appended to the message as key=value pairs.
type Handler struct {
	logger *RotatingLogger
	level  slog.Leveler
	source string
	attrs  string // pre-rendered WithAttrs output
	prefix string // group prefix, e.g. "http.request."
}

// NewHandler returns a Handler for logger.
func NewHandler(logger *RotatingLogger, opts *HandlerOptions) *Handler {
	h := &Handler{logger: logger, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.source = opts.Source
	}
	return h
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler. Write errors are returned, never retried.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	source := h.source

	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if h.prefix == "" && a.Key == SourceKey {
			source = a.Value.Resolve().String()
			return true
		}
		appendAttr(&b, h.prefix, a)
		return true
	})

	return h.logger.Log(LevelFromSlog(r.Level), b.String(), source)
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == SourceKey {
			h2.source = a.Value.Resolve().String()
			continue
		}
		appendAttr(&b, h.prefix, a)
	}
	h2.attrs = b.String()
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			appendAttr(b, prefix, ga)
		}
		return
	}

	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(quoteIfNeeded(attrString(a.Value)))
}

func attrString(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return v.String()
	}
}

func quoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " =\"\t") {
		return strconv.Quote(s)
	}
	return s
}
