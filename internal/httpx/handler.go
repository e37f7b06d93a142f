// Package httpx is the HTTP surface of the order placement service.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
	"github.com/livekart/orderflow/internal/httpx/middlewares"
	"github.com/livekart/orderflow/internal/identity"
)

// HeaderIdempotencyKey is accepted as an alternative to the body field.
// The header wins when both are present.
const HeaderIdempotencyKey = "X-Idempotency-Key"

const timeLayout = time.RFC3339Nano

// Handler serves the order placement and catalog read endpoints.
type Handler struct {
	placer   ports.OrderPlacer
	products ports.ProductStore
}

// NewHandler wires the handler with its placement service and catalog store.
func NewHandler(placer ports.OrderPlacer, products ports.ProductStore) *Handler {
	return &Handler{placer: placer, products: products}
}

// CreateOrder validates and places an order for the authenticated requester.
// Replayed idempotent submissions return 200 with the original order;
// fresh placements return 201.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing session", false)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), false)
		return
	}

	key := r.Header.Get(HeaderIdempotencyKey)
	if key == "" {
		key = req.IdempotencyKey
	}

	items := make([]domain.RequestedItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.RequestedItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	result, err := h.placer.PlaceOrder(r.Context(), ports.PlacementRequest{
		UserID:         claims.Subject,
		UserEmail:      claims.Email,
		IdempotencyKey: key,
		Items:          items,
		ShippingAddr:   domain.Address(req.ShippingAddress),
		PaymentMethod:  req.PaymentMethod,
	})
	if err != nil {
		writePlacementError(w, r, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, PlaceOrderResponse{Success: true, Order: mapOrderToResponse(result.Order)})
}

// GetOrderByID returns a single order. Customers only see their own orders;
// a foreign order id reads as not found so existence is not leaked.
func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing session", false)
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := h.placer.GetOrder(r.Context(), orderID)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order_not_found", "", false)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "retry later", true)
		return
	}
	if order.UserID != claims.Subject && claims.Role != identity.RoleAdmin {
		writeError(w, http.StatusNotFound, "order_not_found", "", false)
		return
	}

	writeJSON(w, http.StatusOK, PlaceOrderResponse{Success: true, Order: mapOrderToResponse(order)})
}

// ListOrders returns the authenticated requester's orders, newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := middlewares.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "missing session", false)
		return
	}

	orders, err := h.placer.ListOrders(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "retry later", true)
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	writeJSON(w, http.StatusOK, OrderListResponse{Success: true, Orders: out})
}

// ListProducts returns the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "retry later", true)
		return
	}

	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = mapProductToResponse(p)
	}
	writeJSON(w, http.StatusOK, ProductListResponse{Success: true, Products: out})
}

// GetProductByID returns one catalog entry.
func (h *Handler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.products.Get(r.Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product_not_found", "", false)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storage_error", "retry later", true)
		return
	}
	writeJSON(w, http.StatusOK, ProductDetailResponse{Success: true, Product: mapProductToResponse(product)})
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writePlacementError translates the placement error taxonomy onto HTTP
// statuses. 4xx means fix your input; retryable 5xx/409 means try again with
// the same idempotency key.
func writePlacementError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *domain.ValidationError
		pnf *domain.ProductNotFoundError
		ins *domain.InsufficientStockError
		se  *domain.StorageError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "validation_error", ve.Error(), false)
	case errors.As(err, &pnf):
		writeError(w, http.StatusNotFound, "product_not_found", pnf.Error(), false)
	case errors.As(err, &ins):
		writeError(w, http.StatusConflict, "insufficient_stock", ins.Error(), false)
	case errors.Is(err, domain.ErrPlacementInProgress):
		writeError(w, http.StatusConflict, "placement_in_progress", "an identical request is being processed", true)
	case errors.As(err, &se):
		writeError(w, http.StatusInternalServerError, "storage_error", "retry later", true)
	default:
		slog.ErrorContext(r.Context(), "unexpected placement error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "retry later", true)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string, retryable bool) {
	writeJSON(w, status, ErrorResponse{
		Error:     code,
		Message:   msg,
		Retryable: retryable,
	})
}
