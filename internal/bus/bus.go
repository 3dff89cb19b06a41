// Package bus provides event bus implementations for publishing evaluation
// run lifecycle events.
package bus

import (
	"context"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type (e.g., "eval.run.started").
	Type string `json:"type"`

	// Source is the component that generated the event.
	Source string `json:"source"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// Topics for evaluation run events.
const (
	TopicRunStarted     = "eval.run.started"
	TopicQueryEvaluated = "eval.query.evaluated"
	TopicRunCompleted   = "eval.run.completed"
)

// RunStartedPayload describes the start of an evaluation run.
type RunStartedPayload struct {
	RunID   string `json:"run_id"`
	Rows    int    `json:"rows"`
	Queries int    `json:"queries"`
}

// QueryEvaluatedPayload describes a single evaluated query.
type QueryEvaluatedPayload struct {
	RunID      string  `json:"run_id"`
	QueryID    string  `json:"query_id"`
	Candidates int     `json:"candidates"`
	Relevant   int     `json:"relevant"`
	Precision  float64 `json:"precision"`
	NDCG       float64 `json:"ndcg"`
}

// RunCompletedPayload describes a finished evaluation run.
type RunCompletedPayload struct {
	RunID         string  `json:"run_id"`
	Queries       int     `json:"queries"`
	SkippedEmpty  int     `json:"skipped_empty"`
	MeanPrecision float64 `json:"mean_precision"`
	MeanNDCG      float64 `json:"mean_ndcg"`
}
