/*
report.go - Rankings, fleet summary, profit report

PURPOSE:
  Read-only rollups over a client snapshot: ranked client orderings for
  the client list, the dashboard's fleet-wide totals and monthly sales
  series, and the flattened profit report.

RANKING:
  rankClients sorts descending by a mode-dependent key with a STABLE
  sort: ties keep the snapshot's relative order, which the repository
  hands over creation-descending. Filtering (text, status) composes
  with ranking as filter-first-then-sort.

TIME WINDOWS:
  thisMonth   [first of current month, now]
  threeMonths date >= now - 3 calendar months
  Window membership is inclusive on both edges. Orders with a zero
  (unparseable) date never fall inside any window.
*/
package engine

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RANKING
// =============================================================================

// RankMode selects the ranking key for RankClients.
type RankMode string

const (
	RankAllTime     RankMode = "allTime"
	RankThisMonth   RankMode = "thisMonth"
	RankThreeMonths RankMode = "threeMonths"
	RankRecent      RankMode = "recent"
)

// ParseRankMode normalizes a query-string mode; unknown values fall back
// to the all-time ranking.
func ParseRankMode(s string) RankMode {
	switch RankMode(s) {
	case RankAllTime, RankThisMonth, RankThreeMonths, RankRecent:
		return RankMode(s)
	default:
		return RankAllTime
	}
}

// RankClients returns the snapshot reordered descending by the mode's
// key. The input slice is left untouched; ties preserve input order.
func RankClients(clients []Client, mode RankMode, now Date) []Client {
	ranked := make([]Client, len(clients))
	copy(ranked, clients)

	switch mode {
	case RankRecent:
		// Key is the DATE of the last order in entry order - not the
		// max date. Clients with no orders rank lowest.
		sort.SliceStable(ranked, func(i, j int) bool {
			return lastEntryDate(ranked[i]).After(lastEntryDate(ranked[j]))
		})
	default:
		sort.SliceStable(ranked, func(i, j int) bool {
			return spendInWindow(ranked[i], mode, now).GreaterThan(spendInWindow(ranked[j], mode, now))
		})
	}
	return ranked
}

func lastEntryDate(c Client) Date {
	if len(c.Orders) == 0 {
		return Date{}
	}
	return c.Orders[len(c.Orders)-1].Date
}

// spendInWindow sums order totals falling inside the mode's window.
func spendInWindow(c Client, mode RankMode, now Date) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range c.Orders {
		if !inWindow(o.Date, mode, now) {
			continue
		}
		sum = sum.Add(o.Total)
	}
	return sum
}

func inWindow(d Date, mode RankMode, now Date) bool {
	switch mode {
	case RankThisMonth:
		return !d.IsZero() && d.AfterOrEqual(now.StartOfMonth()) && d.BeforeOrEqual(now)
	case RankThreeMonths:
		return !d.IsZero() && d.AfterOrEqual(now.AddMonths(-3))
	default: // allTime
		return true
	}
}

// =============================================================================
// FILTERS - compose with ranking as filter first, then sort
// =============================================================================

// FilterClients keeps clients matching the search term: name contains it
// case-insensitively, or phone or code contains it verbatim. An empty
// term matches everything.
func FilterClients(clients []Client, term string) []Client {
	if term == "" {
		return clients
	}
	lower := strings.ToLower(term)
	var out []Client
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(c.Phone, term) ||
			strings.Contains(c.Code, term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterClientsByStatus keeps clients with at least one order in the
// given status.
func FilterClientsByStatus(clients []Client, s Status) []Client {
	var out []Client
	for _, c := range clients {
		for _, o := range c.Orders {
			if o.Status == s {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// =============================================================================
// FLEET SUMMARY - Dashboard rollup
// =============================================================================

// FleetSummary is the dashboard's fleet-wide rollup for one year.
type FleetSummary struct {
	ClientCount   int
	OrderCount    int
	TotalRevenue  decimal.Decimal
	MonthlySeries [12]decimal.Decimal
}

// Summarize computes the fleet summary. TotalRevenue and OrderCount span
// ALL orders; MonthlySeries buckets only orders dated inside the given
// year. Orders with unparseable dates stay in the counts but never land
// in a month bucket.
func Summarize(clients []Client, year int) FleetSummary {
	s := FleetSummary{
		ClientCount:  len(clients),
		TotalRevenue: decimal.Zero,
	}
	for _, c := range clients {
		for _, o := range c.Orders {
			s.OrderCount++
			s.TotalRevenue = s.TotalRevenue.Add(o.Total)
			if !o.Date.IsZero() && o.Date.Year() == year {
				m := int(o.Date.Month()) - 1
				s.MonthlySeries[m] = s.MonthlySeries[m].Add(o.Total)
			}
		}
	}
	return s
}

// LatestClients returns up to n clients sorted by CreatedAt descending.
// Dashboard "latest joiners" strip.
func LatestClients(clients []Client, n int) []Client {
	sorted := make([]Client, len(clients))
	copy(sorted, clients)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// =============================================================================
// PROFIT REPORT - Flattened order rows with financial totals
// =============================================================================

// ProfitRow is one order flattened with its owning client's name.
type ProfitRow struct {
	ClientName     string
	OrderName      string
	Cost           decimal.Decimal
	Profit         decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Date           Date
}

// ProfitTotals sums the report's money columns.
type ProfitTotals struct {
	Revenue  decimal.Decimal
	Cost     decimal.Decimal
	Profit   decimal.Decimal
	Discount decimal.Decimal
}

// ProfitReport flattens every order across the snapshot into rows,
// optionally filtered to a single day (zero date = no filter), together
// with column totals. DiscountAmount is subtotal - total: the money the
// discount actually removed.
func ProfitReport(clients []Client, day Date) ([]ProfitRow, ProfitTotals) {
	rows := []ProfitRow{}
	totals := ProfitTotals{
		Revenue:  decimal.Zero,
		Cost:     decimal.Zero,
		Profit:   decimal.Zero,
		Discount: decimal.Zero,
	}
	for _, c := range clients {
		for _, o := range c.Orders {
			if !day.IsZero() && !o.Date.Equal(day) {
				continue
			}
			row := ProfitRow{
				ClientName:     c.Name,
				OrderName:      orderDisplayName(o),
				Cost:           o.Cost,
				Profit:         o.Profit,
				DiscountAmount: o.Subtotal.Sub(o.Total),
				Total:          o.Total,
				Date:           o.Date,
			}
			rows = append(rows, row)
			totals.Revenue = totals.Revenue.Add(row.Total)
			totals.Cost = totals.Cost.Add(row.Cost)
			totals.Profit = totals.Profit.Add(row.Profit)
			totals.Discount = totals.Discount.Add(row.DiscountAmount)
		}
	}
	return rows, totals
}

// orderDisplayName labels an order by its first line item.
func orderDisplayName(o Order) string {
	if len(o.Items) == 0 {
		return ""
	}
	return o.Items[0].Name
}
