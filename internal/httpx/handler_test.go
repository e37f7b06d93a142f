package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
	"github.com/livekart/orderflow/internal/identity"
)

type fakePlacer struct {
	placeErr error
	replayed bool
	lastReq  ports.PlacementRequest
	orders   map[string]*domain.Order
}

func (f *fakePlacer) PlaceOrder(_ context.Context, req ports.PlacementRequest) (*ports.PlacementResult, error) {
	f.lastReq = req
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &ports.PlacementResult{Order: testOrder(req.UserID), Replayed: f.replayed}, nil
}

func (f *fakePlacer) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return o, nil
}

func (f *fakePlacer) ListOrders(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeCatalog map[string]domain.Product

func (f fakeCatalog) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := f[id]
	if !ok {
		return domain.Product{}, ports.ErrNotFound
	}
	return p, nil
}

func (f fakeCatalog) List(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f))
	for _, p := range f {
		out = append(out, p)
	}
	return out, nil
}

func (f fakeCatalog) Put(_ context.Context, p domain.Product) error { f[p.ID] = p; return nil }

func (f fakeCatalog) BulkImport(ctx context.Context, products []domain.Product) error {
	for _, p := range products {
		_ = f.Put(ctx, p)
	}
	return nil
}

func testOrder(userID string) *domain.Order {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("10.00")
	return &domain.Order{
		ID:     "order-1",
		UserID: userID,
		Items: []domain.OrderLineItem{
			{ProductID: "p1", Title: "Widget", UnitPrice: price, Quantity: 2, LineSubtotal: price.Mul(decimal.NewFromInt(2)), VendorID: "v1"},
		},
		TotalAmount: decimal.RequireFromString("20.00"),
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

var testVerifier = identity.StaticVerifier{
	"tok-user":  {Subject: "user-1", Email: "u1@livekart.local", Role: identity.RoleCustomer},
	"tok-other": {Subject: "user-2", Email: "u2@livekart.local", Role: identity.RoleCustomer},
	"tok-admin": {Subject: "root", Email: "admin@livekart.local", Role: identity.RoleAdmin},
}

func newTestServer(t *testing.T, placer *fakePlacer) *httptest.Server {
	t.Helper()
	cat := fakeCatalog{
		"p1": {ID: "p1", Title: "Widget", Price: decimal.RequireFromString("10.00"), VendorID: "v1"},
	}
	srv := httptest.NewServer(NewRouter(NewHandler(placer, cat), testVerifier))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

const validBody = `{
	"items": [{"product_id":"p1","quantity":2}],
	"shippingAddress": {"street":"1 Main St","city":"Springfield"},
	"paymentMethod": "card"
}`

func TestCreateOrder_Success(t *testing.T) {
	placer := &fakePlacer{}
	srv := newTestServer(t, placer)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", "tok-user", validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out PlaceOrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Success)
	assert.Equal(t, "order-1", out.Order.OrderID)
	assert.Equal(t, "20.00", out.Order.TotalAmount)
	assert.Equal(t, "pending", out.Order.Status)

	// Identity comes from the verified session, never the body.
	assert.Equal(t, "user-1", placer.lastReq.UserID)
	assert.Equal(t, "u1@livekart.local", placer.lastReq.UserEmail)
	assert.Equal(t, "card", placer.lastReq.PaymentMethod)
}

func TestCreateOrder_IdempotencyHeaderWins(t *testing.T) {
	placer := &fakePlacer{}
	srv := newTestServer(t, placer)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/orders",
		strings.NewReader(`{"idempotency_key":"from-body","items":[{"product_id":"p1","quantity":1}],"shippingAddress":{"street":"s","city":"c"}}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer tok-user")
	req.Header.Set(HeaderIdempotencyKey, "from-header")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "from-header", placer.lastReq.IdempotencyKey)
}

func TestCreateOrder_Replay(t *testing.T) {
	placer := &fakePlacer{replayed: true}
	srv := newTestServer(t, placer)

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", "tok-user", validBody)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	srv := newTestServer(t, &fakePlacer{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", "", validBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, srv.URL+"/orders", "bogus", validBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateOrder_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, &fakePlacer{})

	resp := doJSON(t, http.MethodPost, srv.URL+"/orders", "tok-user", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		code      string
		retryable bool
	}{
		{"validation", domain.NewValidationError("items", "order must contain at least one item"), http.StatusBadRequest, "validation_error", false},
		{"product not found", &domain.ProductNotFoundError{ProductID: "p_missing"}, http.StatusNotFound, "product_not_found", false},
		{"insufficient stock", &domain.InsufficientStockError{ProductID: "p1", Requested: 9, Available: 5}, http.StatusConflict, "insufficient_stock", false},
		{"in progress", domain.ErrPlacementInProgress, http.StatusConflict, "placement_in_progress", true},
		{"storage", domain.NewStorageError("order write", assert.AnError), http.StatusInternalServerError, "storage_error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, &fakePlacer{placeErr: tt.err})

			resp := doJSON(t, http.MethodPost, srv.URL+"/orders", "tok-user", validBody)
			require.Equal(t, tt.status, resp.StatusCode)

			var out ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.False(t, out.Success)
			assert.Equal(t, tt.code, out.Error)
			assert.Equal(t, tt.retryable, out.Retryable)
		})
	}
}

func TestGetOrderByID_Ownership(t *testing.T) {
	placer := &fakePlacer{orders: map[string]*domain.Order{"order-1": testOrder("user-1")}}
	srv := newTestServer(t, placer)

	resp := doJSON(t, http.MethodGet, srv.URL+"/orders/order-1", "tok-user", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Another customer's order reads as not found.
	resp = doJSON(t, http.MethodGet, srv.URL+"/orders/order-1", "tok-other", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Admins see everything.
	resp = doJSON(t, http.MethodGet, srv.URL+"/orders/order-1", "tok-admin", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/orders/ghost", "tok-user", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListOrders(t *testing.T) {
	placer := &fakePlacer{orders: map[string]*domain.Order{"order-1": testOrder("user-1")}}
	srv := newTestServer(t, placer)

	resp := doJSON(t, http.MethodGet, srv.URL+"/orders", "tok-user", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out OrderListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Orders, 1)
	assert.Equal(t, "order-1", out.Orders[0].OrderID)

	resp = doJSON(t, http.MethodGet, srv.URL+"/orders", "tok-other", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = OrderListResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Orders)
}

func TestProducts_PublicReads(t *testing.T) {
	srv := newTestServer(t, &fakePlacer{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/products", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list ProductListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, "10.00", list.Products[0].Price)

	resp = doJSON(t, http.MethodGet, srv.URL+"/products/p1", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail ProductDetailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	assert.True(t, detail.Success)
	assert.Equal(t, "p1", detail.Product.ProductID)
	assert.Equal(t, "10.00", detail.Product.Price)

	resp = doJSON(t, http.MethodGet, srv.URL+"/products/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakePlacer{})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://shop.livekart.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type, X-Idempotency-Key")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakePlacer{})

	resp := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
