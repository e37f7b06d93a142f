package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/livekart/orderflow/internal/core/ports"
)

type record struct {
	orderID   string
	committed bool
	expiresAt time.Time
}

// MemoryGuard is an in-process guard for tests and single-node development.
// It provides the same reserve/commit/release semantics as the Redis guard
// under a mutex instead of a conditional write.
type MemoryGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]record

	// Now is overridable in tests to exercise expiry.
	Now func() time.Time
}

// NewMemoryGuard returns an empty in-memory guard. ttl <= 0 falls back to
// DefaultTTL.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryGuard{
		ttl:     ttl,
		records: make(map[string]record),
		Now:     time.Now,
	}
}

var _ ports.IdempotencyGuard = (*MemoryGuard)(nil)

func (g *MemoryGuard) CheckAndReserve(_ context.Context, key string) (ports.Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.Now()
	if rec, ok := g.records[key]; ok && now.Before(rec.expiresAt) {
		if !rec.committed {
			return ports.Reservation{State: ports.ReservationInProgress}, nil
		}
		return ports.Reservation{State: ports.ReservationDuplicate, OrderID: rec.orderID}, nil
	}

	// Uncommitted reservations get the short pending window only; Commit
	// extends the record to the full TTL.
	g.records[key] = record{expiresAt: now.Add(pendingTTL)}
	return ports.Reservation{State: ports.ReservationFresh}, nil
}

func (g *MemoryGuard) Commit(_ context.Context, key, orderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := g.records[key]
	rec.orderID = orderID
	rec.committed = true
	rec.expiresAt = g.Now().Add(g.ttl)
	g.records[key] = rec
	return nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.records, key)
	return nil
}
