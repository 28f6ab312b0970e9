/*
normalize.go - Legacy record shapes to canonical types

PURPOSE:
  The repository stores heterogeneous client documents: several schema
  generations coexist. This file is the single normalization step run at
  the repository boundary so the rest of the engine only ever sees the
  canonical Client/Order shapes.

LEGACY SHAPES TOLERATED:
  - Single-item orders: no items array, just name/orderCost (and an
    optional quantity multiplier). Synthesized into a one-element item
    list priced at orderCost * quantity.
  - Missing status: defaults to NEW.
  - Missing paidAmount: defaults to 0.
  - birthDate stored under "dob".
  - firstOrderDate stored under "firstPurchaseDate".
  - Money and discount fields stored as numbers OR strings.

DERIVED FIELDS ARE NEVER TRUSTED:
  Stored subtotal/total/cost/profit are discarded and recomputed from
  the normalized items and discount, with one exception: an order whose
  items cannot be reconstructed at all keeps its stored total so the
  ledger can still count it.
*/
package engine

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW SHAPES - What the repository actually holds
// =============================================================================

// RawItem is a line item as persisted. Price may be a number or string.
type RawItem struct {
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price"`
}

// RawOrder is an order document as persisted, covering every schema
// generation at once.
type RawOrder struct {
	Items              []RawItem       `json:"items"`
	DiscountPercentage json.RawMessage `json:"discountPercentage"`
	Date               string          `json:"date"`
	Status             string          `json:"status"`
	PaidAmount         json.RawMessage `json:"paidAmount"`
	Total              json.RawMessage `json:"total"`
	Cost               json.RawMessage `json:"cost"`
	Profit             json.RawMessage `json:"profit"`

	// Legacy single-item fields.
	Name      string          `json:"name"`
	OrderCost json.RawMessage `json:"orderCost"`
	Quantity  json.RawMessage `json:"quantity"`
}

// RawClient is a client document as persisted.
type RawClient struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address"`
	Code      string     `json:"code"`
	BirthDate string     `json:"birthDate"`
	DOB       string     `json:"dob"`
	CreatedAt string     `json:"createdAt"`
	Orders    []RawOrder `json:"orders"`

	FirstOrderDate    string `json:"firstOrderDate"`
	FirstPurchaseDate string `json:"firstPurchaseDate"`
	LastOrderDate     string `json:"lastOrderDate"`
}

// =============================================================================
// COERCION
// =============================================================================

// coerceDecimal turns a raw JSON scalar into a decimal. Numbers and
// numeric strings parse; anything else (null, absent, garbage) is zero.
func coerceDecimal(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return decimal.NewFromFloat(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	return decimal.Zero
}

// =============================================================================
// NORMALIZATION
// =============================================================================

// NormalizeOrder maps one persisted order to the canonical shape and
// recomputes its derived totals.
func NormalizeOrder(raw RawOrder) Order {
	o := Order{
		DiscountPercentage: coerceDecimal(raw.DiscountPercentage),
		Date:               ParseDateLenient(raw.Date),
		Status:             ParseStatus(raw.Status),
		PaidAmount:         coerceDecimal(raw.PaidAmount),
	}

	switch {
	case len(raw.Items) > 0:
		o.Items = make([]LineItem, len(raw.Items))
		for i, it := range raw.Items {
			o.Items[i] = LineItem{Name: it.Name, Price: coerceDecimal(it.Price)}
		}

	case raw.Name != "" || len(raw.OrderCost) > 0:
		// Legacy single-item shape. Quantity was a multiplier on the
		// unit price; fold it into the synthesized line.
		price := coerceDecimal(raw.OrderCost)
		qty := coerceDecimal(raw.Quantity)
		if qty.GreaterThan(decimal.NewFromInt(1)) {
			price = price.Mul(qty)
		}
		o.Items = []LineItem{{Name: raw.Name, Price: price}}
	}

	if len(o.Items) == 0 {
		// Nothing to rebuild from. Keep the stored total so the ledger
		// still counts the record instead of dropping history.
		o.Total = round2(coerceDecimal(raw.Total))
		o.Subtotal = o.Total
		o.Cost = round2(coerceDecimal(raw.Cost))
		o.Profit = round2(coerceDecimal(raw.Profit))
		return o
	}

	return Recompute(o)
}

// NormalizeClient maps one persisted client to the canonical shape.
func NormalizeClient(raw RawClient) Client {
	c := Client{
		ID:      ClientID(raw.ID),
		Name:    raw.Name,
		Phone:   raw.Phone,
		Address: raw.Address,
		Code:    raw.Code,
	}

	birth := raw.BirthDate
	if birth == "" {
		birth = raw.DOB
	}
	c.BirthDate = ParseDateLenient(birth)

	// CreatedAt keeps full timestamp precision when present: the
	// "latest clients" ordering distinguishes same-day creations.
	if t, err := time.Parse(time.RFC3339, raw.CreatedAt); err == nil {
		c.CreatedAt = t.UTC()
	} else if d, err := ParseDate(raw.CreatedAt); err == nil {
		c.CreatedAt = d.Time
	}

	c.Orders = make([]Order, len(raw.Orders))
	for i, ro := range raw.Orders {
		c.Orders[i] = NormalizeOrder(ro)
	}

	first := raw.FirstOrderDate
	if first == "" {
		first = raw.FirstPurchaseDate
	}
	if d := ParseDateLenient(first); !d.IsZero() {
		c.FirstOrderDate = &d
	}
	if d := ParseDateLenient(raw.LastOrderDate); !d.IsZero() {
		c.LastOrderDate = &d
	}

	// Stored date bounds can be missing on legacy documents even when
	// orders exist; re-derive rather than leave the invariant broken.
	if c.FirstOrderDate == nil || c.LastOrderDate == nil {
		syncOrderDates(&c)
	}
	return c
}
