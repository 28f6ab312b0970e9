/*
pricing.go - Order totals from line items and discount

PURPOSE:
  The single place where an order's money fields are derived. Everything
  downstream (ledger, reports, persistence) consumes the tuple computed
  here and never re-derives it differently.

THE RULE:
  subtotal = sum(item.price)          negative/unparseable prices count as 0
  total    = subtotal * (1 - d/100)   rounded to 2 places
  cost     = total * 0.7              rounded to 2 places
  profit   = total * 0.3              rounded to 2 places

DISCOUNT IS NOT CLAMPED:
  A discount below 0 or above 100 is applied as-is, which can inflate the
  total or drive it negative. Historical data contains such orders and
  reports must reproduce their stored behavior, so the engine flags the
  condition (DiscountOutOfRange) instead of fixing it. Stricter input
  validation, if wanted, belongs at the write boundary.

PURITY:
  No side effects, no state. Recomputing from the same items/discount
  always yields the identical tuple.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// PRICING ENGINE
// =============================================================================

// ComputeOrderTotals derives the financial tuple for a set of line items
// and a discount percentage.
func ComputeOrderTotals(items []LineItem, discountPct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		price := it.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		subtotal = subtotal.Add(price)
	}
	subtotal = round2(subtotal)

	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	total := round2(subtotal.Mul(factor))

	return Totals{
		Subtotal: subtotal,
		Total:    total,
		Cost:     round2(total.Mul(costShare)),
		Profit:   round2(total.Mul(profitShare)),
	}
}

// DiscountOutOfRange reports whether a discount falls outside [0, 100].
// Such discounts are still applied (see package comment); callers use
// this to log or surface a warning.
func DiscountOutOfRange(discountPct decimal.Decimal) bool {
	return discountPct.IsNegative() || discountPct.GreaterThan(hundred)
}

// Recompute returns a copy of the order with its derived fields rebuilt
// from Items and DiscountPercentage. Every save path goes through this.
func Recompute(o Order) Order {
	cp := o.Clone()
	t := ComputeOrderTotals(cp.Items, cp.DiscountPercentage)
	cp.Subtotal = t.Subtotal
	cp.Total = t.Total
	cp.Cost = t.Cost
	cp.Profit = t.Profit
	return cp
}
