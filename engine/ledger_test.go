package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/order-engine/engine"
)

// =============================================================================
// ORDER BALANCE
// =============================================================================

func TestOrderBalance_PartialPayment(t *testing.T) {
	// GIVEN: order total 200, paid 50
	// THEN: remaining 150
	o := engine.NewOrder(items(200), dec(0), day(2024, time.March, 1))
	o.PaidAmount = dec(50)

	b := engine.OrderBalance(o)

	assertDecimal(t, 200, b.Total, "total")
	assertDecimal(t, 50, b.Paid, "paid")
	assertDecimal(t, 150, b.Remaining, "remaining")
}

func TestOrderBalance_OverpaymentGoesNegative(t *testing.T) {
	// Overpayment is kept as a negative remaining, never clamped.
	o := engine.NewOrder(items(200), dec(0), day(2024, time.March, 1))
	o.PaidAmount = dec(250)

	b := engine.OrderBalance(o)

	assertDecimal(t, -50, b.Remaining, "remaining")
}

// =============================================================================
// CLIENT LEDGER
// =============================================================================

func TestClientLedger_SumsAcrossHistory(t *testing.T) {
	c := engine.Client{}
	o1 := engine.NewOrder(items(100), dec(0), day(2024, time.January, 5))
	o1.PaidAmount = dec(100)
	o2 := engine.NewOrder(items(200), dec(0), day(2024, time.February, 5))
	o2.PaidAmount = dec(50)
	c = engine.AddOrder(c, o1)
	c = engine.AddOrder(c, o2)

	s := engine.ClientLedger(c)

	assert.Equal(t, 2, s.OrderCount)
	assertDecimal(t, 300, s.TotalSpent, "total spent")
	assertDecimal(t, 150, s.TotalPaid, "total paid")
	assertDecimal(t, 150, s.TotalRemaining, "total remaining")
}

func TestClientLedger_MalformedOrderCountsAsZero(t *testing.T) {
	// An order with no usable total must not abort the aggregation;
	// it contributes zero. Historical records predate the total field.
	c := engine.Client{Orders: []engine.Order{
		{}, // zero-valued: no items, no total
		engine.NewOrder(items(75), dec(0), day(2024, time.April, 1)),
	}}

	s := engine.ClientLedger(c)

	assert.Equal(t, 2, s.OrderCount)
	assertDecimal(t, 75, s.TotalSpent, "total spent")
}

func TestClientLedger_DoesNotMutateInput(t *testing.T) {
	o := engine.NewOrder(items(100), dec(0), day(2024, time.January, 1))
	o.PaidAmount = dec(30)
	c := engine.AddOrder(engine.Client{}, o)
	before := c.Orders[0].PaidAmount

	_ = engine.ClientLedger(c)

	assert.True(t, c.Orders[0].PaidAmount.Equal(before))
	assert.Len(t, c.Orders, 1)
}

func TestTotalSpent_EmptyClientIsZero(t *testing.T) {
	assertDecimal(t, 0, engine.TotalSpent(engine.Client{}), "empty client spend")
}
