// Package placement implements order placement: pricing and validation
// against the live catalog, idempotent deduplication, and atomic order
// persistence, sequenced by a compensating-step pipeline.
package placement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
	"github.com/livekart/orderflow/internal/pkg/metrics"
	"github.com/livekart/orderflow/internal/placementlog"
)

// EventSink receives best-effort notifications about placed orders. Sinks
// must isolate their own failures; placement never waits on or fails with
// them.
type EventSink interface {
	OrderPlaced(ctx context.Context, o *domain.Order)
}

// Service is the order placement orchestrator.
type Service struct {
	engine *Engine
	orders ports.OrderStore
	guard  ports.IdempotencyGuard

	audit placementlog.Repository // nil-safe: auditing skipped if nil
	sink  EventSink               // nil-safe
	stats *metrics.Registry       // nil-safe

	now   func() time.Time
	newID func() string
}

// NewService wires the orchestrator. audit, sink and stats may be nil.
func NewService(
	products ports.ProductStore,
	orders ports.OrderStore,
	guard ports.IdempotencyGuard,
	audit placementlog.Repository,
	sink EventSink,
	stats *metrics.Registry,
) *Service {
	return &Service{
		engine: NewEngine(products),
		orders: orders,
		guard:  guard,
		audit:  audit,
		sink:   sink,
		stats:  stats,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

var _ ports.OrderPlacer = (*Service)(nil)

// PlaceOrder runs the placement state machine: reserve the idempotency key,
// validate and price the cart, persist the order, commit the reservation.
// A failure at any step compensates whatever already happened and releases
// the reservation so the client can safely retry with the same key.
func (s *Service) PlaceOrder(ctx context.Context, req ports.PlacementRequest) (*ports.PlacementResult, error) {
	start := time.Now()

	if req.UserID == "" {
		return nil, domain.NewValidationError("user", "authenticated requester is required")
	}
	// Resolve the attempt key up front so every audit entry for this
	// logical attempt, rejections included, shares one key.
	key := req.IdempotencyKey
	if key == "" {
		key = deriveKey(req.UserID, req.Items, s.now())
	}

	if !req.ShippingAddr.Valid() {
		err := domain.NewValidationError("shippingAddress", "street and city are required")
		s.reject(ctx, key, err)
		return nil, err
	}

	s.log(ctx, placementlog.NewEntry(ctx, key, placementlog.StatusReceived, "", ""))

	res, err := s.guard.CheckAndReserve(ctx, key)
	if err != nil {
		err = domain.NewStorageError("idempotency reserve", err)
		s.reject(ctx, key, err)
		return nil, err
	}

	switch res.State {
	case ports.ReservationDuplicate:
		return s.replay(ctx, key, res.OrderID)
	case ports.ReservationInProgress:
		s.reject(ctx, key, domain.ErrPlacementInProgress)
		return nil, domain.ErrPlacementInProgress
	}

	a := &attempt{svc: s, req: req, key: key}
	steps := []step{
		&priceStep{attempt: a},
		&persistStep{attempt: a},
		&commitStep{attempt: a},
	}

	if err := runPipeline(ctx, steps); err != nil {
		if rerr := s.guard.Release(ctx, key); rerr != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to release idempotency reservation",
				"key", key, "error", rerr)
		}
		s.reject(ctx, key, err)
		return nil, err
	}

	s.log(ctx, placementlog.NewEntry(ctx, key, placementlog.StatusCommitted, a.order.ID, ""))
	if s.stats != nil {
		s.stats.OrdersPlaced.Inc()
		s.stats.PlacementLatency.Observe(time.Since(start).Seconds())
	}
	if s.sink != nil {
		s.sink.OrderPlaced(ctx, a.order)
	}

	slog.InfoContext(ctx, "order placed",
		"order_id", a.order.ID, "user_id", a.order.UserID, "total", a.order.TotalAmount.StringFixed(2))
	return &ports.PlacementResult{Order: a.order}, nil
}

// GetOrder returns a single order by id.
func (s *Service) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListOrders returns the orders placed by the given user, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// replay serves an idempotent duplicate: the previously committed order is
// returned without re-running validation or writing anything.
func (s *Service) replay(ctx context.Context, key, orderID string) (*ports.PlacementResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		err = domain.NewStorageError("replay lookup", err)
		s.reject(ctx, key, err)
		return nil, err
	}

	s.log(ctx, placementlog.NewEntry(ctx, key, placementlog.StatusReplayed, orderID, ""))
	if s.stats != nil {
		s.stats.IdempotentReplays.Inc()
	}
	slog.InfoContext(ctx, "idempotent replay", "key", key, "order_id", orderID)
	return &ports.PlacementResult{Order: order, Replayed: true}, nil
}

func (s *Service) reject(ctx context.Context, key string, err error) {
	s.log(ctx, placementlog.NewEntry(ctx, key, placementlog.StatusRejected, "", err.Error()))
	if s.stats != nil {
		s.stats.OrdersRejected.WithLabelValues(rejectionReason(err)).Inc()
	}
}

func (s *Service) log(ctx context.Context, e *placementlog.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Save(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to write placement log entry",
			"key", e.AttemptKey, "status", e.Status, "error", err)
	}
}

// rejectionReason maps an error onto the bounded label set used by the
// rejection counter.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPlacementInProgress):
		return "in_progress"
	case errors.Is(err, &domain.ProductNotFoundError{}):
		return "product_not_found"
	case errors.Is(err, &domain.InsufficientStockError{}):
		return "insufficient_stock"
	case errors.Is(err, &domain.ValidationError{}):
		return "validation"
	case errors.Is(err, &domain.StorageError{}):
		return "storage"
	default:
		return "internal"
	}
}

// attempt carries the state shared between pipeline steps for one placement.
type attempt struct {
	svc *Service
	req ports.PlacementRequest
	key string

	priced *PricedOrder
	order  *domain.Order
}

type priceStep struct {
	noCompensation
	attempt *attempt
}

func (s *priceStep) Name() string { return "validate_and_price" }

func (s *priceStep) Execute(ctx context.Context) error {
	a := s.attempt
	priced, err := a.svc.engine.ValidateAndPrice(ctx, a.req.Items)
	if err != nil {
		return err
	}
	a.priced = priced
	a.svc.log(ctx, placementlog.NewEntry(ctx, a.key, placementlog.StatusPriced, "", ""))
	return nil
}

type persistStep struct {
	attempt *attempt
}

func (s *persistStep) Name() string { return "persist_order" }

func (s *persistStep) Execute(ctx context.Context) error {
	a := s.attempt
	now := a.svc.now()
	order := &domain.Order{
		ID:             a.svc.newID(),
		IdempotencyKey: a.key,
		UserID:         a.req.UserID,
		UserEmail:      a.req.UserEmail,
		Items:          a.priced.Items,
		TotalAmount:    a.priced.Total,
		ShippingAddr:   a.req.ShippingAddr,
		PaymentMethod:  a.req.PaymentMethod,
		Status:         domain.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := a.svc.orders.Create(ctx, order); err != nil {
		return domain.NewStorageError("order write", err)
	}
	a.order = order
	a.svc.log(ctx, placementlog.NewEntry(ctx, a.key, placementlog.StatusPersisted, order.ID, ""))
	return nil
}

// Compensate removes the order row so a retry under the same key can never
// observe two orders.
func (s *persistStep) Compensate(ctx context.Context) error {
	return s.attempt.svc.orders.Delete(ctx, s.attempt.order.ID)
}

type commitStep struct {
	noCompensation
	attempt *attempt
}

func (s *commitStep) Name() string { return "commit_idempotency" }

func (s *commitStep) Execute(ctx context.Context) error {
	a := s.attempt
	if err := a.svc.guard.Commit(ctx, a.key, a.order.ID); err != nil {
		return domain.NewStorageError("idempotency commit", err)
	}
	return nil
}
