package domain

import (
	"errors"
	"fmt"
)

// ErrPlacementInProgress is returned when another request holding the same
// idempotency key has reserved it but not yet committed an order. The client
// should retry shortly with the same key.
var ErrPlacementInProgress = errors.New("placement with this idempotency key is in progress")

// ValidationError is returned when the request is malformed or semantically
// invalid: empty cart, non-positive quantity, missing shipping address.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: field=%s, reason=%s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// ProductNotFoundError is returned when a requested product does not exist.
// It fails the whole request; a cart is never partially accepted.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: id=%s", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	_, ok := target.(*ProductNotFoundError)
	return ok
}

// InsufficientStockError is returned when the requested quantity for a
// product exceeds its tracked stock. Quantities for the same product are
// summed across lines before the check.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: id=%s, requested=%d, available=%d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	_, ok := target.(*InsufficientStockError)
	return ok
}

// StorageError wraps a transient persistence failure. It is safe for the
// client to retry with the same idempotency key: the guard releases its
// reservation before this error propagates.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NewStorageError wraps err with the failing operation name.
func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsRetryable reports whether the client may safely retry the request with
// the same idempotency key.
func IsRetryable(err error) bool {
	var se *StorageError
	return errors.As(err, &se) || errors.Is(err, ErrPlacementInProgress)
}
