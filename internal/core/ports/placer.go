package ports

import (
	"context"

	"github.com/livekart/orderflow/internal/core/domain"
)

// PlacementRequest is the canonical, already-authenticated input to order
// placement. UserID and UserEmail come from the verified session, never from
// the request body. There is deliberately no total field: totals are always
// recomputed server-side.
type PlacementRequest struct {
	UserID         string
	UserEmail      string
	IdempotencyKey string
	Items          []domain.RequestedItem
	ShippingAddr   domain.Address
	PaymentMethod  string
}

// PlacementResult is the outcome of a successful placement. Replayed is true
// when the request was recognised as an idempotent duplicate and the original
// order was returned without re-executing side effects.
type PlacementResult struct {
	Order    *domain.Order
	Replayed bool
}

// OrderPlacer is the placement surface consumed by the HTTP layer.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req PlacementRequest) (*PlacementResult, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
}
