// Package domain defines the core business types for order placement.
package domain

import "github.com/shopspring/decimal"

// Product is the authoritative catalog record for a sellable item.
// Price and stock are read fresh at placement time; client-supplied
// prices are never used for monetary calculation.
type Product struct {
	ID       string
	Title    string
	Price    decimal.Decimal
	VendorID string

	// Stock is the tracked available-unit count. nil means the product's
	// inventory is untracked and any quantity is accepted.
	Stock *int
}

// Tracked reports whether stock is tracked for this product.
func (p Product) Tracked() bool { return p.Stock != nil }

// RequestedItem is a single product/quantity pair as requested by the client.
type RequestedItem struct {
	ProductID string
	Quantity  int
}
