package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. Placement only ever
// creates orders in StatusPending; later transitions belong to order
// lifecycle management.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderLineItem is one line of an order. Title, unit price and vendor are
// snapshots taken from the product store at placement time and are immutable
// afterwards: later catalog changes must not rewrite order history.
type OrderLineItem struct {
	ProductID    string
	Title        string
	UnitPrice    decimal.Decimal
	Quantity     int
	LineSubtotal decimal.Decimal
	VendorID     string
}

// Address is the shipping destination. It is pass-through data: placement
// validates presence of street and city and nothing more.
type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
	Country string
}

// Valid reports whether the address carries the minimum required fields.
func (a Address) Valid() bool { return a.Street != "" && a.City != "" }

// Order is the record persisted by the order writer. The ID is always
// generated server-side and TotalAmount is always recomputed server-side.
type Order struct {
	ID             string
	IdempotencyKey string
	UserID         string
	UserEmail      string
	Items          []OrderLineItem
	TotalAmount    decimal.Decimal
	ShippingAddr   Address
	PaymentMethod  string
	Status         OrderStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
