package logger

import (
	"context"
	"log/slog"

	"github.com/dmarkhas/renderdeploy-go/internal/ctxutil"
)

// ContextHandler wraps another slog.Handler and enriches every record with
// deploy-run tracing values carried in the context (run_id, service_id),
// so call sites never have to pass them explicitly.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled delegates to the wrapped handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds context values as attributes before delegating to the
// wrapped handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if runID := ctxutil.GetRunID(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}
	if serviceID := ctxutil.GetServiceID(ctx); serviceID != "" {
		r.AddAttrs(slog.String("service_id", serviceID))
	}
	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler wrapping the handler with attrs applied.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler wrapping the handler with the group applied.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
