// Package sqlite is the document store backing orderd: products, orders and
// the placement audit log live in one database file.
//
// WAL mode is enabled on Open so readers never block the writer; the pure-Go
// modernc driver keeps builds CGO-free.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    product_id   TEXT PRIMARY KEY,
    title        TEXT NOT NULL,

    -- Decimal string with currency precision. Stored as TEXT so no float
    -- representation ever touches a price.
    price        TEXT NOT NULL,

    -- NULL means inventory is untracked for this product.
    stock        INTEGER,

    vendor_id    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
    order_id        TEXT PRIMARY KEY,
    idempotency_key TEXT NOT NULL,
    user_id         TEXT NOT NULL,
    user_email      TEXT NOT NULL DEFAULT '',

    -- Line item snapshots as a JSON document, written with the row so the
    -- whole order is one atomic insert.
    items           TEXT NOT NULL,

    total_amount    TEXT NOT NULL,
    shipping_addr   TEXT NOT NULL,
    payment_method  TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL,
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_idem ON orders(idempotency_key);

-- Append-only audit of placement attempts. One row per state transition;
-- never updated.
CREATE TABLE IF NOT EXISTS placement_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    attempt_key TEXT NOT NULL,
    status      TEXT NOT NULL,
    order_id    TEXT NOT NULL DEFAULT '',
    reason      TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_placement_logs_key ON placement_logs(attempt_key, created_at);
CREATE INDEX IF NOT EXISTS idx_placement_logs_trace ON placement_logs(trace_id);
`

// Store owns the database handle and hands out the typed repositories.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Products returns the catalog repository.
func (s *Store) Products() *ProductStore { return &ProductStore{db: s.db} }

// Orders returns the order repository.
func (s *Store) Orders() *OrderStore { return &OrderStore{db: s.db} }

// PlacementLog returns the placement audit log repository.
func (s *Store) PlacementLog() *PlacementLog { return &PlacementLog{db: s.db} }

// Fixed-width fractional seconds: every stored timestamp has the same
// length, so lexicographic ORDER BY on the TEXT column matches
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses the RFC3339 TEXT timestamps stored in SQLite.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
