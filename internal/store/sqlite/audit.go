package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/livekart/orderflow/internal/placementlog"
)

// PlacementLog implements placementlog.Repository on the shared database.
type PlacementLog struct {
	db *sql.DB
}

var _ placementlog.Repository = (*PlacementLog)(nil)

// Save appends one log entry. Safe to call concurrently.
func (l *PlacementLog) Save(ctx context.Context, entry *placementlog.Entry) error {
	const q = `
		INSERT INTO placement_logs
			(attempt_key, status, order_id, reason, trace_id, span_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, q,
		entry.AttemptKey,
		string(entry.Status),
		entry.OrderID,
		entry.Reason,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save placement log for %q: %w", entry.AttemptKey, err)
	}
	return nil
}

// Latest returns the most recent entry for an attempt key. Useful for
// support tooling; placement itself never reads the log.
func (l *PlacementLog) Latest(ctx context.Context, attemptKey string) (*placementlog.Entry, error) {
	const q = `
		SELECT attempt_key, status, order_id, reason, trace_id, span_id, created_at
		FROM   placement_logs
		WHERE  attempt_key = ?
		ORDER  BY created_at DESC, id DESC
		LIMIT  1`

	var entry placementlog.Entry
	var createdAt string
	err := l.db.QueryRowContext(ctx, q, attemptKey).Scan(
		&entry.AttemptKey,
		&entry.Status,
		&entry.OrderID,
		&entry.Reason,
		&entry.TraceID,
		&entry.SpanID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: placement attempt %q not found", attemptKey)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest placement log for %q: %w", attemptKey, err)
	}

	if entry.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &entry, nil
}
