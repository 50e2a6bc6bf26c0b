package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *OrderStore {
	t.Helper()

	store, err := NewOrderStore(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestOrderStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Create(ctx, Order{
		OrderID:  "order-1",
		Provider: "paytr",
		Amount:   10000,
		Currency: "TRY",
	})
	require.NoError(t, err)

	order, err := store.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", order.OrderID)
	assert.Equal(t, "paytr", order.Provider)
	assert.Equal(t, int64(10000), order.Amount)
	assert.Equal(t, "TRY", order.Currency)
	assert.Equal(t, StatusCreated, order.Status)
}

func TestOrderStore_DuplicateOrderID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Order{OrderID: "order-1", Provider: "paytr", Amount: 100, Currency: "TRY"}))

	err := store.Create(ctx, Order{OrderID: "order-1", Provider: "stripe", Amount: 200, Currency: "USD"})
	assert.ErrorIs(t, err, ErrDuplicateOrder)

	// The first attempt stays untouched.
	order, err := store.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "paytr", order.Provider)
	assert.Equal(t, int64(100), order.Amount)
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Order{OrderID: "order-1", Provider: "paytr", Amount: 100, Currency: "TRY"}))

	require.NoError(t, store.UpdateStatus(ctx, "order-1", StatusSucceeded, ""))
	order, err := store.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, order.Status)

	require.NoError(t, store.UpdateStatus(ctx, "order-1", StatusFailed, "card declined"))
	order, err = store.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, order.Status)
	assert.Equal(t, "card declined", order.Reason)
}

func TestOrderStore_UpdateStatusUnknownOrder(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateStatus(context.Background(), "missing", StatusSucceeded, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderStore_GetUnknownOrder(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
