package placement

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
)

// Engine validates a requested item list against the product store and
// prices it with authoritative data read at call time.
type Engine struct {
	products ports.ProductStore
}

// NewEngine creates a pricing engine backed by the given product store.
func NewEngine(products ports.ProductStore) *Engine {
	return &Engine{products: products}
}

// PricedOrder is a fully validated and priced line-item list, ready for
// persistence.
type PricedOrder struct {
	Items []domain.OrderLineItem
	Total decimal.Decimal
}

// ValidateAndPrice checks every requested line and builds price/title/vendor
// snapshots from the store. Any invalid line fails the whole request; a cart
// is never partially accepted.
//
// Duplicate product ids stay separate lines, but their quantities are summed
// for the stock check so the cart cannot exceed tracked stock in aggregate.
// The total is accumulated exactly and rounded once at the end, half to even,
// to 2 decimal places.
func (e *Engine) ValidateAndPrice(ctx context.Context, items []domain.RequestedItem) (*PricedOrder, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "order must contain at least one item")
	}

	lines := make([]domain.OrderLineItem, 0, len(items))
	total := decimal.Zero

	// One store read per distinct product; duplicate lines snapshot the
	// same read so a cart is priced against a single point in time.
	seen := make(map[string]domain.Product, len(items))
	requested := make(map[string]int, len(items))

	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.NewValidationError("product_id", "must not be empty")
		}
		if it.Quantity <= 0 {
			return nil, domain.NewValidationError("quantity", "must be a positive integer")
		}

		product, ok := seen[it.ProductID]
		if !ok {
			var err error
			product, err = e.products.Get(ctx, it.ProductID)
			if errors.Is(err, ports.ErrNotFound) {
				return nil, &domain.ProductNotFoundError{ProductID: it.ProductID}
			}
			if err != nil {
				return nil, domain.NewStorageError("product lookup", err)
			}
			seen[it.ProductID] = product
		}

		requested[it.ProductID] += it.Quantity
		if product.Tracked() && requested[it.ProductID] > *product.Stock {
			return nil, &domain.InsufficientStockError{
				ProductID: it.ProductID,
				Requested: requested[it.ProductID],
				Available: *product.Stock,
			}
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		lines = append(lines, domain.OrderLineItem{
			ProductID:    product.ID,
			Title:        product.Title,
			UnitPrice:    product.Price,
			Quantity:     it.Quantity,
			LineSubtotal: subtotal,
			VendorID:     product.VendorID,
		})
		total = total.Add(subtotal)
	}

	return &PricedOrder{Items: lines, Total: total.RoundBank(2)}, nil
}
