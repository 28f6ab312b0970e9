package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/order-engine/engine"
)

func rawJSON(s string) json.RawMessage { return json.RawMessage(s) }

// =============================================================================
// ORDER NORMALIZATION TESTS
// =============================================================================

func TestNormalizeOrder_LegacySingleItemShape(t *testing.T) {
	// GIVEN: an old-generation record with name/orderCost and no items
	// WHEN: it is normalized
	// THEN: a one-element item list is synthesized and totals recomputed

	got := engine.NormalizeOrder(engine.RawOrder{
		Name:      "X",
		OrderCost: rawJSON(`40`),
		Total:     rawJSON(`40`),
	})

	require.Len(t, got.Items, 1)
	assert.Equal(t, "X", got.Items[0].Name)
	assertDecimal(t, 40, got.Items[0].Price, "synthesized price")
	assertDecimal(t, 40, got.Subtotal, "subtotal")
	assertDecimal(t, 40, got.Total, "total")
	assertDecimal(t, 28, got.Cost, "cost")
	assertDecimal(t, 12, got.Profit, "profit")
	assert.Equal(t, engine.StatusNew, got.Status)
	assertDecimal(t, 0, got.PaidAmount, "paid amount")
}

func TestNormalizeOrder_LegacyQuantityFoldedIntoPrice(t *testing.T) {
	got := engine.NormalizeOrder(engine.RawOrder{
		Name:      "Croissant",
		OrderCost: rawJSON(`2.5`),
		Quantity:  rawJSON(`4`),
	})

	require.Len(t, got.Items, 1)
	assertDecimal(t, 10, got.Items[0].Price, "price times quantity")
	assertDecimal(t, 10, got.Total, "total")
}

func TestNormalizeOrder_ItemsShapeWinsOverLegacyFields(t *testing.T) {
	// A record carrying both shapes uses the items list and ignores the
	// legacy fields.
	got := engine.NormalizeOrder(engine.RawOrder{
		Items: []engine.RawItem{
			{Name: "A", Price: rawJSON(`30`)},
			{Name: "B", Price: rawJSON(`20`)},
		},
		Name:      "stale",
		OrderCost: rawJSON(`999`),
	})

	require.Len(t, got.Items, 2)
	assertDecimal(t, 50, got.Total, "total from items")
}

func TestNormalizeOrder_StringMoneyCoerced(t *testing.T) {
	got := engine.NormalizeOrder(engine.RawOrder{
		Items:              []engine.RawItem{{Name: "A", Price: rawJSON(`"99.99"`)}},
		DiscountPercentage: rawJSON(`"10"`),
		PaidAmount:         rawJSON(`"25.50"`),
	})

	assertDecimal(t, 99.99, got.Items[0].Price, "string price")
	assertDecimal(t, 10, got.DiscountPercentage, "string discount")
	assertDecimal(t, 25.50, got.PaidAmount, "string paid amount")
	assertDecimal(t, 89.99, got.Total, "total")
}

func TestNormalizeOrder_GarbageMoneyIsZero(t *testing.T) {
	got := engine.NormalizeOrder(engine.RawOrder{
		Items:      []engine.RawItem{{Name: "A", Price: rawJSON(`"not a number"`)}},
		PaidAmount: rawJSON(`null`),
	})

	assertDecimal(t, 0, got.Items[0].Price, "garbage price")
	assertDecimal(t, 0, got.PaidAmount, "null paid amount")
}

func TestNormalizeOrder_StoredTotalsDiscarded(t *testing.T) {
	// Derived fields persisted by older code are never trusted.
	got := engine.NormalizeOrder(engine.RawOrder{
		Items: []engine.RawItem{{Name: "A", Price: rawJSON(`100`)}},
		Total: rawJSON(`1`),
		Cost:  rawJSON(`2`),
	})

	assertDecimal(t, 100, got.Total, "recomputed total")
	assertDecimal(t, 70, got.Cost, "recomputed cost")
	assertDecimal(t, 30, got.Profit, "recomputed profit")
}

func TestNormalizeOrder_NoItemsKeepsStoredTotal(t *testing.T) {
	// An order with nothing to rebuild from keeps its stored total so
	// the ledger still counts it.
	got := engine.NormalizeOrder(engine.RawOrder{
		Total:  rawJSON(`75`),
		Cost:   rawJSON(`52.5`),
		Profit: rawJSON(`22.5`),
	})

	assert.Empty(t, got.Items)
	assertDecimal(t, 75, got.Total, "stored total kept")
	assertDecimal(t, 75, got.Subtotal, "subtotal mirrors total")
	assertDecimal(t, 52.5, got.Cost, "stored cost kept")
	assertDecimal(t, 22.5, got.Profit, "stored profit kept")
}

func TestNormalizeOrder_MissingStatusDefaultsToNew(t *testing.T) {
	got := engine.NormalizeOrder(engine.RawOrder{
		Items:  []engine.RawItem{{Name: "A", Price: rawJSON(`10`)}},
		Status: "",
	})

	assert.Equal(t, engine.StatusNew, got.Status)
}

func TestNormalizeOrder_BadDateBecomesZero(t *testing.T) {
	got := engine.NormalizeOrder(engine.RawOrder{
		Items: []engine.RawItem{{Name: "A", Price: rawJSON(`10`)}},
		Date:  "sometime last week",
	})

	assert.True(t, got.Date.IsZero())
}

// =============================================================================
// CLIENT NORMALIZATION TESTS
// =============================================================================

func TestNormalizeClient_DobAlias(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{
		ID:   "c1",
		Name: "Amina",
		DOB:  "1990-05-10",
	})

	assert.True(t, got.BirthDate.Equal(day(1990, time.May, 10)))
}

func TestNormalizeClient_BirthDateWinsOverDob(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{
		BirthDate: "1990-05-10",
		DOB:       "1980-01-01",
	})

	assert.True(t, got.BirthDate.Equal(day(1990, time.May, 10)))
}

func TestNormalizeClient_FirstPurchaseDateAlias(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{
		FirstPurchaseDate: "2023-06-15",
		LastOrderDate:     "2023-08-01",
	})

	require.NotNil(t, got.FirstOrderDate)
	assert.True(t, got.FirstOrderDate.Equal(day(2023, time.June, 15)))
	require.NotNil(t, got.LastOrderDate)
	assert.True(t, got.LastOrderDate.Equal(day(2023, time.August, 1)))
}

func TestNormalizeClient_CreatedAtKeepsTimestampPrecision(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{
		CreatedAt: "2024-03-01T14:30:05Z",
	})

	assert.Equal(t, time.Date(2024, time.March, 1, 14, 30, 5, 0, time.UTC), got.CreatedAt)
}

func TestNormalizeClient_CreatedAtDayOnlyFallback(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{
		CreatedAt: "2024-03-01",
	})

	assert.Equal(t, 2024, got.CreatedAt.Year())
	assert.Equal(t, time.March, got.CreatedAt.Month())
	assert.Equal(t, 1, got.CreatedAt.Day())
}

func TestNormalizeClient_MissingDateBoundsRederived(t *testing.T) {
	// GIVEN: a legacy document with orders but no stored date bounds
	// THEN: the bounds are re-derived from the order list

	got := engine.NormalizeClient(engine.RawClient{
		Orders: []engine.RawOrder{
			{Items: []engine.RawItem{{Name: "A", Price: rawJSON(`10`)}}, Date: "2024-02-01"},
			{Items: []engine.RawItem{{Name: "B", Price: rawJSON(`20`)}}, Date: "2024-04-01"},
		},
	})

	require.NotNil(t, got.FirstOrderDate)
	assert.True(t, got.FirstOrderDate.Equal(day(2024, time.February, 1)))
	require.NotNil(t, got.LastOrderDate)
	assert.True(t, got.LastOrderDate.Equal(day(2024, time.April, 1)))
}

func TestNormalizeClient_NoOrdersNoBounds(t *testing.T) {
	got := engine.NormalizeClient(engine.RawClient{Name: "NewClient"})

	assert.Nil(t, got.FirstOrderDate)
	assert.Nil(t, got.LastOrderDate)
	assert.Empty(t, got.Orders)
}
