// Package ports declares the interfaces the placement core depends on.
// Adapters (sqlite, redis, fakes) live elsewhere and are injected.
package ports

import (
	"context"
	"errors"

	"github.com/livekart/orderflow/internal/core/domain"
)

// ErrNotFound is returned by stores when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ProductStore resolves product identifiers to authoritative catalog data.
// Reads return the current snapshot; Get returns ErrNotFound for unknown ids.
type ProductStore interface {
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Put(ctx context.Context, p domain.Product) error
	BulkImport(ctx context.Context, products []domain.Product) error
}

// OrderStore persists orders. Create writes the complete record atomically;
// no partial order is ever visible to readers.
type OrderStore interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// ReservationState is the outcome of a conditional idempotency reservation.
type ReservationState int

const (
	// ReservationFresh means the key was absent and is now reserved by
	// this request.
	ReservationFresh ReservationState = iota
	// ReservationDuplicate means a prior request already committed an
	// order under this key.
	ReservationDuplicate
	// ReservationInProgress means another request holds the reservation
	// but has not committed yet.
	ReservationInProgress
)

// Reservation is the result of IdempotencyGuard.CheckAndReserve.
// OrderID is set only when State is ReservationDuplicate.
type Reservation struct {
	State   ReservationState
	OrderID string
}

// IdempotencyGuard provides the atomic insert-if-absent that makes a retried
// placement request return the original order instead of creating a second
// one. CheckAndReserve must be a single conditional write: there is no
// check-then-write window to race through.
type IdempotencyGuard interface {
	CheckAndReserve(ctx context.Context, key string) (Reservation, error)
	Commit(ctx context.Context, key, orderID string) error
	Release(ctx context.Context, key string) error
}
