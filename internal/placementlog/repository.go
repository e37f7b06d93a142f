package placementlog

import "context"

// Repository persists placement log entries. Each Save appends a row; the
// log is append-only, never upserted. The orchestrator depends on this
// abstraction so the implementation can be sqlite, in-memory for tests, or
// absent entirely.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
}
