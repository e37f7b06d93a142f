// Package placementlog defines the durable audit trail of order placement
// attempts.
//
// Each state transition of an attempt is appended as an immutable entry,
// keyed by the idempotency key so the trail can be joined with the resulting
// order and, via the trace_id field, with the distributed trace. The log is
// observability data: placement works identically without it.
package placementlog

import "time"

// Status is the lifecycle state of a placement attempt.
type Status string

const (
	StatusReceived  Status = "RECEIVED"
	StatusPriced    Status = "PRICED"
	StatusPersisted Status = "PERSISTED"
	StatusCommitted Status = "COMMITTED"
	StatusReplayed  Status = "REPLAYED"
	StatusRejected  Status = "REJECTED"
)

// Entry is a single row in the placement_logs table: a point-in-time
// snapshot of one placement attempt.
type Entry struct {
	// AttemptKey is the idempotency key of the placement attempt.
	AttemptKey string

	// Status is the lifecycle state at the time the entry was written.
	Status Status

	// OrderID is the resulting order, set once known (empty before
	// persistence and on rejection).
	OrderID string

	// Reason holds the rejection reason for REJECTED entries.
	Reason string

	// TraceID and SpanID are the W3C identifiers of the span active when
	// the entry was written, for jumping from a row to the full trace.
	TraceID string
	SpanID  string

	// CreatedAt is the wall-clock time of this entry.
	CreatedAt time.Time
}
