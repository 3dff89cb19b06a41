// Package context provides context utilities for evaluation runs.
package context

import (
	"context"
)

type contextKey string

const (
	// RunIDKey is the context key for storing the evaluation run ID
	RunIDKey contextKey = "run_id"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from context.
// Returns empty string if not found.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}
