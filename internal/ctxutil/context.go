// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	runIDKey     contextKey = "ctxutil.runID"
	serviceIDKey contextKey = "ctxutil.serviceID"
)

// WithRunID adds a deploy run ID to the context. A run ID is generated
// once per tool invocation and correlates every log line, history record,
// and archived manifest produced by that run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the deploy run ID from the context.
// Returns the run ID if found, empty string otherwise.
func GetRunID(ctx context.Context) string {
	if v := ctx.Value(runIDKey); v != nil {
		if runID, ok := v.(string); ok && runID != "" {
			return runID
		}
	}
	return ""
}

// WithServiceID adds the target Render service ID to the context.
func WithServiceID(ctx context.Context, serviceID string) context.Context {
	return context.WithValue(ctx, serviceIDKey, serviceID)
}

// GetServiceID retrieves the target service ID from the context.
// Returns the service ID if found, empty string otherwise.
func GetServiceID(ctx context.Context) string {
	if v := ctx.Value(serviceIDKey); v != nil {
		if serviceID, ok := v.(string); ok && serviceID != "" {
			return serviceID
		}
	}
	return ""
}

// PreserveTracing creates a detached context that keeps the tracing values
// but is independent of the parent's cancellation and deadlines. Use for
// best-effort post-deploy work (notifications, archiving) that should not
// be cut short when the deploy context is released.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if runID := GetRunID(ctx); runID != "" {
		newCtx = WithRunID(newCtx, runID)
	}
	if serviceID := GetServiceID(ctx); serviceID != "" {
		newCtx = WithServiceID(newCtx, serviceID)
	}

	return newCtx
}
