package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/order-engine/engine"
	"github.com/warp/order-engine/store"
	"github.com/warp/order-engine/store/sqlite"
)

func newTestRepo(t *testing.T) *sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndGetClient(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateClient(ctx, store.NewClientFields{
		Name:      "Amina",
		Phone:     "0555 123 456",
		Address:   "12 Rue des Oliviers",
		BirthDate: engine.NewDate(1990, time.May, 10),
	})
	require.NoError(t, err)

	got, err := repo.GetClient(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, "Amina", got.Name)
	assert.Equal(t, "0555 123 456", got.Phone)
	assert.Equal(t, created.Code, got.Code)
	assert.True(t, got.BirthDate.Equal(engine.NewDate(1990, time.May, 10)))
	assert.Equal(t, int64(1), got.Version)
	assert.Empty(t, got.Orders)
}

func TestGetClient_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetClient(context.Background(), "missing")

	assert.ErrorIs(t, err, engine.ErrClientNotFound)
}

func TestOrdersRoundTrip(t *testing.T) {
	// GIVEN: a client with one discounted, partially paid order
	// WHEN: the row is written and read back
	// THEN: the normalized order carries the same derived fields

	repo := newTestRepo(t)
	ctx := context.Background()
	c, err := repo.CreateClient(ctx, store.NewClientFields{Name: "Bilal"})
	require.NoError(t, err)

	order := engine.NewOrder(
		[]engine.LineItem{
			{Name: "Wedding cake", Price: decimal.NewFromInt(100)},
			{Name: "Cookies", Price: decimal.NewFromInt(50)},
		},
		decimal.NewFromInt(10), engine.NewDate(2024, time.June, 15))
	order.PaidAmount = decimal.NewFromInt(35)

	_, err = repo.UpdateClient(ctx, c.ID, c.Version, func(cl *engine.Client) error {
		*cl = engine.AddOrder(*cl, order)
		return nil
	})
	require.NoError(t, err)

	got, err := repo.GetClient(ctx, c.ID)

	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	o := got.Orders[0]
	assert.True(t, o.Total.Equal(decimal.NewFromInt(135)), "total: %s", o.Total)
	assert.True(t, o.Cost.Equal(decimal.NewFromFloat(94.50)), "cost: %s", o.Cost)
	assert.True(t, o.Profit.Equal(decimal.NewFromFloat(40.50)), "profit: %s", o.Profit)
	assert.True(t, o.PaidAmount.Equal(decimal.NewFromInt(35)), "paid: %s", o.PaidAmount)
	assert.Equal(t, engine.StatusNew, o.Status)
	require.NotNil(t, got.FirstOrderDate)
	assert.True(t, got.FirstOrderDate.Equal(engine.NewDate(2024, time.June, 15)))
	assert.Equal(t, int64(2), got.Version)
}

func TestUpdateClient_StaleVersionRejected(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	c, err := repo.CreateClient(ctx, store.NewClientFields{Name: "Chafik"})
	require.NoError(t, err)

	_, err = repo.UpdateClient(ctx, c.ID, c.Version, func(cl *engine.Client) error {
		cl.Phone = "first writer"
		return nil
	})
	require.NoError(t, err)

	_, err = repo.UpdateClient(ctx, c.ID, c.Version, func(cl *engine.Client) error {
		cl.Phone = "second writer"
		return nil
	})

	assert.ErrorIs(t, err, engine.ErrConcurrentModification)

	got, err := repo.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "first writer", got.Phone)
	assert.Equal(t, int64(2), got.Version)
}

func TestListClients_CreationDescending(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a, err := repo.CreateClient(ctx, store.NewClientFields{Name: "first"})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond) // created_at is second-granular on disk
	b, err := repo.CreateClient(ctx, store.NewClientFields{Name: "second"})
	require.NoError(t, err)

	list, err := repo.ListClients(ctx)

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, a.ID, list[1].ID)
}

func TestDeleteClient(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	c, err := repo.CreateClient(ctx, store.NewClientFields{Name: "Dalia"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteClient(ctx, c.ID))
	assert.ErrorIs(t, repo.DeleteClient(ctx, c.ID), engine.ErrClientNotFound)
}

func TestLegacyRowsNormalizeOnRead(t *testing.T) {
	// GIVEN: a row written by an earlier schema generation, seeded
	// directly: single-item order shape, dob-less birth date, string
	// money, no status, no paidAmount
	// WHEN: it is read through the repository
	// THEN: it comes back in canonical shape with recomputed totals

	repo := newTestRepo(t)
	ctx := context.Background()

	ordersJSON := `[{"name":"X","orderCost":40,"total":40}]`
	require.NoError(t, repo.SeedRaw(ctx, sqlite.RawRow{
		ID:         "legacy-1",
		Name:       "Legacy",
		Code:       "1234",
		CreatedAt:  "2022-01-01T00:00:00Z",
		OrdersJSON: ordersJSON,
		Version:    1,
	}))

	got, err := repo.GetClient(ctx, "legacy-1")

	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	o := got.Orders[0]
	require.Len(t, o.Items, 1)
	assert.Equal(t, "X", o.Items[0].Name)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(40)), "total: %s", o.Total)
	assert.True(t, o.Cost.Equal(decimal.NewFromInt(28)), "cost: %s", o.Cost)
	assert.Equal(t, engine.StatusNew, o.Status)
	assert.True(t, o.PaidAmount.IsZero())
	// Date bounds are re-derived from the order list.
	require.NotNil(t, got.FirstOrderDate)
}
