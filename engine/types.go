/*
Package engine is the order financial computation and client ledger core.

PURPOSE:
  This package contains the pure rules of the order-management system:
  turning line items and a discount into a total/cost/profit split,
  combining totals with recorded payments into paid/remaining balances,
  the order fulfillment status workflow, client/fleet reporting over
  time windows, and date-triggered notification rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineItem: A named price on an order
  - Order:    A purchase with items, discount, payment, status, date
  - Client:   A customer owning an ordered history of Orders
  - Totals:   The derived subtotal/total/cost/profit tuple

DESIGN PRINCIPLES:
  1. Snapshot in, values out: every function takes an immutable snapshot
     and returns new values. Nothing here reads ambient state or mutates
     its inputs.
  2. Precision: decimal.Decimal for all money, rounded half-away-from-zero
     to 2 places at derivation points.
  3. Permissive coercion: dirty historical data is defaulted, never
     rejected. See normalize.go and errors.go.

SEE ALSO:
  - pricing.go:   items + discount -> Totals
  - ledger.go:    totals + payments -> balances
  - report.go:    rankings, fleet summary, profit report
  - notify.go:    date-triggered notification rules
  - normalize.go: legacy record shapes -> canonical types
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID is assigned by the repository; the core treats it as opaque.
type ClientID string

// =============================================================================
// LINE ITEM
// =============================================================================

type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// =============================================================================
// ORDER - A single purchase owned by exactly one Client
// =============================================================================

type Order struct {
	Items              []LineItem      `json:"items"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Date               Date            `json:"date"`
	Status             Status          `json:"status"`
	PaidAmount         decimal.Decimal `json:"paidAmount"`

	// Derived, recomputed on every save. Never entered by hand.
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
	Cost     decimal.Decimal `json:"cost"`
	Profit   decimal.Decimal `json:"profit"`
}

// Clone returns a deep copy. Mutation helpers operate on clones so the
// caller's snapshot stays untouched.
func (o Order) Clone() Order {
	cp := o
	cp.Items = make([]LineItem, len(o.Items))
	copy(cp.Items, o.Items)
	return cp
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a customer with an ordered history of Orders. Orders is in
// entry order, which is not necessarily sorted by Order.Date (dates are
// user-editable).
type Client struct {
	ID      ClientID `json:"id"`
	Name    string   `json:"name"`
	Phone   string   `json:"phone"`
	Address string   `json:"address"`

	// Code is a 4-digit display code assigned once at creation.
	Code string `json:"code"`

	BirthDate Date      `json:"birthDate"`
	CreatedAt time.Time `json:"createdAt"`

	// Derived from Orders; nil iff Orders is empty.
	FirstOrderDate *Date `json:"firstOrderDate"`
	LastOrderDate  *Date `json:"lastOrderDate"`

	Orders []Order `json:"orders"`

	// Version is the optimistic-concurrency token maintained by the
	// repository. The core never changes it.
	Version int64 `json:"version"`
}

func (c Client) Clone() Client {
	cp := c
	cp.Orders = make([]Order, len(c.Orders))
	for i, o := range c.Orders {
		cp.Orders[i] = o.Clone()
	}
	if c.FirstOrderDate != nil {
		d := *c.FirstOrderDate
		cp.FirstOrderDate = &d
	}
	if c.LastOrderDate != nil {
		d := *c.LastOrderDate
		cp.LastOrderDate = &d
	}
	return cp
}

// =============================================================================
// DERIVED VALUE TUPLES
// =============================================================================

// Totals is the derived financial tuple of an order.
type Totals struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal
}

// Balance is the ledger view of a single order.
type Balance struct {
	Total     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// LedgerSummary aggregates balances across a client's full history.
type LedgerSummary struct {
	TotalSpent     decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalRemaining decimal.Decimal
	OrderCount     int
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

var (
	costShare   = decimal.NewFromFloat(0.7)
	profitShare = decimal.NewFromFloat(0.3)
	hundred     = decimal.NewFromInt(100)
)

// round2 rounds to 2 decimal places, half away from zero.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
