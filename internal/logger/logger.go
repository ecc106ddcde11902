package logger

import (
	"context"
	"io"
	"log/slog"
)

type contextKey string

const attrKey contextKey = "attrKey"

// ContextHandler implements [slog.Handler] interface and adds to the log
// record any attributes passed into the context with the [attrKey].
type ContextHandler struct {
	slog.Handler
}

// NewContextHandler creates a new instance of ContextHandler
// with `handler` as the base.
func NewContextHandler(handler slog.Handler) ContextHandler {
	return ContextHandler{Handler: handler}
}

// Handle implements [slog.Handler] interface.
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(attrKey).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, record)
}

// WithAttrs keeps the context handling when attributes get bound to the logger.
func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// Ctx creates a new context with the attached attributes.
//
// These will get logged later by the [ContextHandler] if given the resulting context.
func Ctx(ctx context.Context, toAppend ...slog.Attr) context.Context {
	existing, _ := ctx.Value(attrKey).([]slog.Attr)

	// Copy so sibling contexts don't share a backing array
	attrs := make([]slog.Attr, 0, len(existing)+len(toAppend))
	attrs = append(attrs, existing...)
	attrs = append(attrs, toAppend...)
	return context.WithValue(ctx, attrKey, attrs)
}

// New builds the process logger: json if asked for, text otherwise.
func New(w io.Writer, format string) *slog.Logger {
	var handler slog.Handler = slog.NewTextHandler(w, nil)
	if format == "json" {
		handler = slog.NewJSONHandler(w, nil)
	}

	return slog.New(NewContextHandler(handler))
}
