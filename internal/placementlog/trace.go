package placementlog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds a log entry with trace identifiers extracted from the
// active OpenTelemetry span in ctx. When no valid span is present (unit
// tests, tracing disabled) the trace fields stay empty.
func NewEntry(ctx context.Context, attemptKey string, status Status, orderID, reason string) *Entry {
	e := &Entry{
		AttemptKey: attemptKey,
		Status:     status,
		OrderID:    orderID,
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
