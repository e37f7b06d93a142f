package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livekart/orderflow/internal/core/domain"
	"github.com/livekart/orderflow/internal/core/ports"
	"github.com/livekart/orderflow/internal/placementlog"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func intptr(n int) *int { return &n }

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestProductStore_PutGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.Products()

	p := domain.Product{ID: "p1", Title: "Widget", Price: dec(t, "19.99"), Stock: intptr(7), VendorID: "v1"}
	require.NoError(t, products.Put(ctx, p))

	got, err := products.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Title)
	assert.True(t, got.Price.Equal(dec(t, "19.99")))
	require.NotNil(t, got.Stock)
	assert.Equal(t, 7, *got.Stock)
	assert.Equal(t, "v1", got.VendorID)
}

func TestProductStore_UntrackedStock(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.Products()

	require.NoError(t, products.Put(ctx, domain.Product{ID: "digital", Title: "eBook", Price: dec(t, "4.50")}))

	got, err := products.Get(ctx, "digital")
	require.NoError(t, err)
	assert.Nil(t, got.Stock)
	assert.False(t, got.Tracked())
}

func TestProductStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Products().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestProductStore_PutUpserts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.Products()

	require.NoError(t, products.Put(ctx, domain.Product{ID: "p1", Title: "Old", Price: dec(t, "1.00")}))
	require.NoError(t, products.Put(ctx, domain.Product{ID: "p1", Title: "New", Price: dec(t, "2.00"), Stock: intptr(3)}))

	got, err := products.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.True(t, got.Price.Equal(dec(t, "2.00")))
}

func TestProductStore_BulkImportAndList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.Products()

	err := products.BulkImport(ctx, []domain.Product{
		{ID: "a", Title: "A", Price: dec(t, "1.00")},
		{ID: "b", Title: "B", Price: dec(t, "2.00"), Stock: intptr(5)},
	})
	require.NoError(t, err)

	all, err := products.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func sampleOrder(t *testing.T) *domain.Order {
	t.Helper()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Order{
		ID:             "order-1",
		IdempotencyKey: "key-1",
		UserID:         "user-1",
		UserEmail:      "u1@livekart.local",
		Items: []domain.OrderLineItem{
			{
				ProductID:    "p1",
				Title:        "Widget",
				UnitPrice:    dec(t, "10.00"),
				Quantity:     2,
				LineSubtotal: dec(t, "20.00"),
				VendorID:     "v1",
			},
		},
		TotalAmount:   dec(t, "20.00"),
		ShippingAddr:  domain.Address{Street: "1 Main St", City: "Springfield", Country: "US"},
		PaymentMethod: "card",
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOrderStore_CreateGetRoundtrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	orders := store.Orders()

	want := sampleOrder(t)
	require.NoError(t, orders.Create(ctx, want))

	got, err := orders.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.IdempotencyKey, got.IdempotencyKey)
	assert.Equal(t, want.UserID, got.UserID)
	assert.Equal(t, want.UserEmail, got.UserEmail)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.ShippingAddr, got.ShippingAddr)
	assert.True(t, want.TotalAmount.Equal(got.TotalAmount))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Widget", got.Items[0].Title)
	assert.True(t, got.Items[0].UnitPrice.Equal(dec(t, "10.00")))
	assert.True(t, got.Items[0].LineSubtotal.Equal(dec(t, "20.00")))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestOrderStore_DuplicateIDRejected(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	orders := store.Orders()

	require.NoError(t, orders.Create(ctx, sampleOrder(t)))
	err := orders.Create(ctx, sampleOrder(t))
	assert.Error(t, err, "primary key violation must surface")
}

func TestOrderStore_ListByUserNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	orders := store.Orders()

	older := sampleOrder(t)
	newer := sampleOrder(t)
	newer.ID = "order-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	newer.UpdatedAt = newer.CreatedAt

	require.NoError(t, orders.Create(ctx, older))
	require.NoError(t, orders.Create(ctx, newer))

	got, err := orders.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "order-2", got[0].ID)
	assert.Equal(t, "order-1", got[1].ID)

	none, err := orders.ListByUser(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// A whole-second timestamp must sort before one a millisecond later;
	// the encoding is fixed width so TEXT comparison follows time.
	assert.Less(t, formatTime(base), formatTime(base.Add(time.Millisecond)))
	assert.Less(t, formatTime(base.Add(time.Millisecond)), formatTime(base.Add(time.Second)))
}

func TestOrderStore_ListByUserSubSecondOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	orders := store.Orders()

	older := sampleOrder(t) // exactly on the second
	newer := sampleOrder(t)
	newer.ID = "order-2"
	newer.CreatedAt = older.CreatedAt.Add(time.Millisecond)
	newer.UpdatedAt = newer.CreatedAt

	require.NoError(t, orders.Create(ctx, older))
	require.NoError(t, orders.Create(ctx, newer))

	got, err := orders.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "order-2", got[0].ID)
	assert.Equal(t, "order-1", got[1].ID)
}

func TestOrderStore_Delete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	orders := store.Orders()

	require.NoError(t, orders.Create(ctx, sampleOrder(t)))
	require.NoError(t, orders.Delete(ctx, "order-1"))

	_, err := orders.GetByID(ctx, "order-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPlacementLog_SaveAndLatest(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	log := store.PlacementLog()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	entries := []*placementlog.Entry{
		{AttemptKey: "key-1", Status: placementlog.StatusReceived, CreatedAt: base},
		{AttemptKey: "key-1", Status: placementlog.StatusPriced, CreatedAt: base.Add(time.Millisecond)},
		{AttemptKey: "key-1", Status: placementlog.StatusCommitted, OrderID: "order-1", CreatedAt: base.Add(2 * time.Millisecond)},
	}
	for _, e := range entries {
		require.NoError(t, log.Save(ctx, e))
	}

	latest, err := log.Latest(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, placementlog.StatusCommitted, latest.Status)
	assert.Equal(t, "order-1", latest.OrderID)

	_, err = log.Latest(ctx, "unknown")
	assert.Error(t, err)
}
