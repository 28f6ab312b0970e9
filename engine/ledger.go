/*
ledger.go - Paid/remaining balances from order totals and payments

PURPOSE:
  Answers "what does this client still owe?" for one order and across a
  client's full history.

REMAINING IS NOT CLAMPED:
  remaining = total - paid. Overpayment yields a negative remaining and
  is deliberately kept, not zeroed: it signals a credit the owner settles
  out of band.

PARTIAL-FAILURE TOLERANCE:
  Orders predating the derived-total fields aggregate as zero rather
  than failing the whole ledger. One malformed record must never hide a
  client's other balances.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// LEDGER CALCULATOR
// =============================================================================

// OrderBalance produces the ledger view of one order.
func OrderBalance(o Order) Balance {
	return Balance{
		Total:     o.Total,
		Paid:      o.PaidAmount,
		Remaining: o.Total.Sub(o.PaidAmount),
	}
}

// ClientLedger sums per-order balances across the client's history.
// O(len(Orders)); the input is not mutated.
func ClientLedger(c Client) LedgerSummary {
	s := LedgerSummary{
		TotalSpent:     decimal.Zero,
		TotalPaid:      decimal.Zero,
		TotalRemaining: decimal.Zero,
		OrderCount:     len(c.Orders),
	}
	for _, o := range c.Orders {
		b := OrderBalance(o)
		s.TotalSpent = s.TotalSpent.Add(b.Total)
		s.TotalPaid = s.TotalPaid.Add(b.Paid)
		s.TotalRemaining = s.TotalRemaining.Add(b.Remaining)
	}
	return s
}

// TotalSpent is the all-time revenue from one client: the sum of order
// totals. Ranking and the client list header both use this key.
func TotalSpent(c Client) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range c.Orders {
		sum = sum.Add(o.Total)
	}
	return sum
}
