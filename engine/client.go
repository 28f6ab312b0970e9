/*
client.go - Order lifecycle within a client's history

PURPOSE:
  Append, in-place edit, and removal of orders, with the derived
  first/lastOrderDate pair kept consistent. All helpers work on a clone
  of the snapshot; the caller persists the returned client through the
  repository.

INVARIANTS MAINTAINED:
  - Orders keeps entry order. Edits address orders by index, never by
    identity (orders have no IDs of their own).
  - FirstOrderDate and LastOrderDate are nil iff Orders is empty.
  - LastOrderDate tracks the date of the last element in entry order.
    Removing the last order re-derives it from the new last element.
  - Every path recomputes the order's financial tuple before it lands
    in the history.
*/
package engine

import "github.com/shopspring/decimal"

// NewOrder builds an order in its initial state: status NEW, nothing
// paid, totals derived from the items and discount.
func NewOrder(items []LineItem, discountPct decimal.Decimal, date Date) Order {
	return Recompute(Order{
		Items:              items,
		DiscountPercentage: discountPct,
		Date:               date,
		Status:             StatusNew,
		PaidAmount:         decimal.Zero,
	})
}

// AddOrder appends an order to the client's history and returns the
// updated client. FirstOrderDate is set on the first ever order;
// LastOrderDate always moves to the new order's date.
func AddOrder(c Client, o Order) Client {
	cp := c.Clone()
	o = Recompute(o)
	cp.Orders = append(cp.Orders, o)

	d := o.Date
	if cp.FirstOrderDate == nil {
		cp.FirstOrderDate = &d
	}
	last := d
	cp.LastOrderDate = &last
	return cp
}

// UpdateOrder replaces the order at index in place. The replacement is
// fully recomputed, never merged with the previous version.
func UpdateOrder(c Client, index int, o Order) (Client, error) {
	if index < 0 || index >= len(c.Orders) {
		return Client{}, ErrOrderIndex
	}
	cp := c.Clone()
	cp.Orders[index] = Recompute(o)
	syncOrderDates(&cp)
	return cp, nil
}

// RemoveOrder filters the order at index out of the history. No soft
// delete: the record is gone and the date bounds are re-derived.
func RemoveOrder(c Client, index int) (Client, error) {
	if index < 0 || index >= len(c.Orders) {
		return Client{}, ErrOrderIndex
	}
	cp := c.Clone()
	cp.Orders = append(cp.Orders[:index], cp.Orders[index+1:]...)
	syncOrderDates(&cp)
	return cp, nil
}

// UpdateOrderStatus toggles the status of the order at index, leaving
// every financial field as it was.
func UpdateOrderStatus(c Client, index int, s Status) (Client, error) {
	if index < 0 || index >= len(c.Orders) {
		return Client{}, ErrOrderIndex
	}
	cp := c.Clone()
	cp.Orders[index] = SetStatus(cp.Orders[index], s)
	return cp, nil
}

// syncOrderDates re-derives FirstOrderDate/LastOrderDate from the
// current history: first element's date, last element's date, nil when
// empty. Entry order, not min/max over dates.
func syncOrderDates(c *Client) {
	if len(c.Orders) == 0 {
		c.FirstOrderDate = nil
		c.LastOrderDate = nil
		return
	}
	first := c.Orders[0].Date
	last := c.Orders[len(c.Orders)-1].Date
	c.FirstOrderDate = &first
	c.LastOrderDate = &last
}
