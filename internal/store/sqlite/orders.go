package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
)

// OrderStore implements ports.OrderStore on the shared database. Each order
// is a single row with its line items embedded as a JSON document, so an
// order is always written and read whole.
type OrderStore struct {
	db *sql.DB
}

var _ ports.OrderStore = (*OrderStore)(nil)

// lineItemRecord is the stored shape of a line item. Decimals are stored as
// strings so the snapshot survives untouched by float formatting.
type lineItemRecord struct {
	ProductID    string `json:"product_id"`
	Title        string `json:"title"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	LineSubtotal string `json:"line_subtotal"`
	VendorID     string `json:"vendor_id"`
}

type addressRecord struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
	Country string `json:"country,omitempty"`
}

func (s *OrderStore) Create(ctx context.Context, o *domain.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return fmt.Errorf("sqlite: encode items for order %q: %w", o.ID, err)
	}
	addr, err := json.Marshal(addressRecord(o.ShippingAddr))
	if err != nil {
		return fmt.Errorf("sqlite: encode address for order %q: %w", o.ID, err)
	}

	const q = `
		INSERT INTO orders
			(order_id, idempotency_key, user_id, user_email, items,
			 total_amount, shipping_addr, payment_method, status,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, q,
		o.ID,
		o.IdempotencyKey,
		o.UserID,
		o.UserEmail,
		string(items),
		o.TotalAmount.StringFixed(2),
		string(addr),
		o.PaymentMethod,
		string(o.Status),
		formatTime(o.CreatedAt),
		formatTime(o.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create order %q: %w", o.ID, err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
		SELECT order_id, idempotency_key, user_id, user_email, items,
		       total_amount, shipping_addr, payment_method, status,
		       created_at, updated_at
		FROM   orders
		WHERE  order_id = ?`

	o, err := scanOrder(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}
	return o, nil
}

func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	const q = `
		SELECT order_id, idempotency_key, user_id, user_email, items,
		       total_amount, shipping_addr, payment_method, status,
		       created_at, updated_at
		FROM   orders
		WHERE  user_id = ?
		ORDER  BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders for %q: %w", userID, err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *OrderStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete order %q: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var items, total, addr, status, createdAt, updatedAt string

	err := row.Scan(
		&o.ID,
		&o.IdempotencyKey,
		&o.UserID,
		&o.UserEmail,
		&items,
		&total,
		&addr,
		&o.PaymentMethod,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Items, err = unmarshalItems([]byte(items)); err != nil {
		return nil, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("total %q: %w", total, err)
	}
	var rec addressRecord
	if err := json.Unmarshal([]byte(addr), &rec); err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}
	o.ShippingAddr = domain.Address(rec)
	o.Status = domain.OrderStatus(status)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func marshalItems(items []domain.OrderLineItem) ([]byte, error) {
	recs := make([]lineItemRecord, len(items))
	for i, it := range items {
		recs[i] = lineItemRecord{
			ProductID:    it.ProductID,
			Title:        it.Title,
			UnitPrice:    it.UnitPrice.StringFixed(2),
			Quantity:     it.Quantity,
			LineSubtotal: it.LineSubtotal.StringFixed(2),
			VendorID:     it.VendorID,
		}
	}
	return json.Marshal(recs)
}

func unmarshalItems(data []byte) ([]domain.OrderLineItem, error) {
	var recs []lineItemRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	items := make([]domain.OrderLineItem, len(recs))
	for i, rec := range recs {
		unit, err := decimal.NewFromString(rec.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("item %q unit price %q: %w", rec.ProductID, rec.UnitPrice, err)
		}
		sub, err := decimal.NewFromString(rec.LineSubtotal)
		if err != nil {
			return nil, fmt.Errorf("item %q subtotal %q: %w", rec.ProductID, rec.LineSubtotal, err)
		}
		items[i] = domain.OrderLineItem{
			ProductID:    rec.ProductID,
			Title:        rec.Title,
			UnitPrice:    unit,
			Quantity:     rec.Quantity,
			LineSubtotal: sub,
			VendorID:     rec.VendorID,
		}
	}
	return items, nil
}
