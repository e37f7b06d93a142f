package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
)

// ProductStore implements ports.ProductStore on the shared database.
type ProductStore struct {
	db *sql.DB
}

var _ ports.ProductStore = (*ProductStore)(nil)

func (s *ProductStore) Get(ctx context.Context, id string) (domain.Product, error) {
	const q = `
		SELECT product_id, title, price, stock, vendor_id
		FROM   products
		WHERE  product_id = ?`

	var p domain.Product
	var price string
	var stock sql.NullInt64

	err := s.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Title, &price, &stock, &p.VendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: get product %q: %w", id, err)
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.Product{}, fmt.Errorf("sqlite: product %q price %q: %w", id, price, err)
	}
	if stock.Valid {
		n := int(stock.Int64)
		p.Stock = &n
	}
	return p, nil
}

func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
		SELECT product_id, title, price, stock, vendor_id
		FROM   products
		ORDER  BY product_id`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		var price string
		var stock sql.NullInt64

		if err := rows.Scan(&p.ID, &p.Title, &price, &stock, &p.VendorID); err != nil {
			return nil, fmt.Errorf("sqlite: scan product: %w", err)
		}
		if p.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sqlite: product %q price %q: %w", p.ID, price, err)
		}
		if stock.Valid {
			n := int(stock.Int64)
			p.Stock = &n
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProductStore) Put(ctx context.Context, p domain.Product) error {
	const q = `
		INSERT INTO products (product_id, title, price, stock, vendor_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			stock = excluded.stock,
			vendor_id = excluded.vendor_id`

	_, err := s.db.ExecContext(ctx, q, p.ID, p.Title, p.Price.StringFixed(2), nullableStock(p.Stock), p.VendorID)
	if err != nil {
		return fmt.Errorf("sqlite: put product %q: %w", p.ID, err)
	}
	return nil
}

func (s *ProductStore) BulkImport(ctx context.Context, products []domain.Product) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin import: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO products (product_id, title, price, stock, vendor_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			stock = excluded.stock,
			vendor_id = excluded.vendor_id`

	for _, p := range products {
		if _, err := tx.ExecContext(ctx, q, p.ID, p.Title, p.Price.StringFixed(2), nullableStock(p.Stock), p.VendorID); err != nil {
			return fmt.Errorf("sqlite: import product %q: %w", p.ID, err)
		}
	}
	return tx.Commit()
}

func nullableStock(stock *int) any {
	if stock == nil {
		return nil
	}
	return *stock
}
