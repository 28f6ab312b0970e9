/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API contract, decoupled from the engine's
  decimal-typed domain model. Money crosses the wire as plain numbers.

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Handlers validate; DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/order-engine/engine"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateClientRequest creates a client. The code is store-assigned.
type CreateClientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
}

// UpdateClientRequest edits contact fields. Version is the optimistic-
// concurrency token from the last read.
type UpdateClientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	BirthDate string `json:"birthDate"`
	Version   int64  `json:"version"`
}

// ItemPayload is one line item in a request body.
type ItemPayload struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderRequest creates or fully replaces an order.
type OrderRequest struct {
	Items              []ItemPayload `json:"items"`
	DiscountPercentage float64       `json:"discountPercentage"`
	Date               string        `json:"date"`
	Status             string        `json:"status,omitempty"`
	PaidAmount         float64       `json:"paidAmount"`
	Version            int64         `json:"version"`
}

// StatusRequest toggles an order's fulfillment status.
type StatusRequest struct {
	Status  string `json:"status"`
	Version int64  `json:"version"`
}

// VersionRequest carries just the concurrency token (order deletion).
type VersionRequest struct {
	Version int64 `json:"version"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type ItemDTO struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type OrderDTO struct {
	Index              int       `json:"index"`
	Items              []ItemDTO `json:"items"`
	DiscountPercentage float64   `json:"discountPercentage"`
	Date               string    `json:"date"`
	Status             string    `json:"status"`
	PaidAmount         float64   `json:"paidAmount"`
	Subtotal           float64   `json:"subtotal"`
	Total              float64   `json:"total"`
	Cost               float64   `json:"cost"`
	Profit             float64   `json:"profit"`
	Remaining          float64   `json:"remaining"`
}

type ClientDTO struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	Code           string     `json:"code"`
	BirthDate      string     `json:"birthDate,omitempty"`
	CreatedAt      string     `json:"createdAt"`
	FirstOrderDate *string    `json:"firstOrderDate"`
	LastOrderDate  *string    `json:"lastOrderDate"`
	Orders         []OrderDTO `json:"orders"`
	TotalSpent     float64    `json:"totalSpent"`
	Version        int64      `json:"version"`
}

type LedgerDTO struct {
	ClientID       string  `json:"clientId"`
	TotalSpent     float64 `json:"totalSpent"`
	TotalPaid      float64 `json:"totalPaid"`
	TotalRemaining float64 `json:"totalRemaining"`
	OrderCount     int     `json:"orderCount"`
}

type SummaryDTO struct {
	Year          int         `json:"year"`
	ClientCount   int         `json:"clientCount"`
	OrderCount    int         `json:"orderCount"`
	TotalRevenue  float64     `json:"totalRevenue"`
	MonthlySeries [12]float64 `json:"monthlySeries"`
	LatestClients []ClientDTO `json:"latestClients"`
}

type ProfitRowDTO struct {
	ClientName     string  `json:"clientName"`
	OrderName      string  `json:"orderName"`
	Cost           float64 `json:"cost"`
	Profit         float64 `json:"profit"`
	DiscountAmount float64 `json:"discountAmount"`
	Total          float64 `json:"total"`
	Date           string  `json:"date"`
}

type ProfitReportDTO struct {
	Rows          []ProfitRowDTO `json:"rows"`
	TotalRevenue  float64        `json:"totalRevenue"`
	TotalCost     float64        `json:"totalCost"`
	TotalProfit   float64        `json:"totalProfit"`
	TotalDiscount float64        `json:"totalDiscount"`
}

type NotificationDTO struct {
	Type       string `json:"type"`
	Text       string `json:"text"`
	ClientID   string `json:"clientId"`
	ClientName string `json:"clientName"`
	Phone      string `json:"phone,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPING
// =============================================================================

func f64(d decimal.Decimal) float64 { return d.InexactFloat64() }

func toOrderDTO(index int, o engine.Order) OrderDTO {
	items := make([]ItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemDTO{Name: it.Name, Price: f64(it.Price)}
	}
	b := engine.OrderBalance(o)
	return OrderDTO{
		Index:              index,
		Items:              items,
		DiscountPercentage: f64(o.DiscountPercentage),
		Date:               o.Date.String(),
		Status:             string(o.Status),
		PaidAmount:         f64(o.PaidAmount),
		Subtotal:           f64(o.Subtotal),
		Total:              f64(o.Total),
		Cost:               f64(o.Cost),
		Profit:             f64(o.Profit),
		Remaining:          f64(b.Remaining),
	}
}

func toClientDTO(c engine.Client) ClientDTO {
	orders := make([]OrderDTO, len(c.Orders))
	for i, o := range c.Orders {
		orders[i] = toOrderDTO(i, o)
	}
	dto := ClientDTO{
		ID:         string(c.ID),
		Name:       c.Name,
		Phone:      c.Phone,
		Address:    c.Address,
		Code:       c.Code,
		BirthDate:  c.BirthDate.String(),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		Orders:     orders,
		TotalSpent: f64(engine.TotalSpent(c)),
		Version:    c.Version,
	}
	if c.FirstOrderDate != nil {
		s := c.FirstOrderDate.String()
		dto.FirstOrderDate = &s
	}
	if c.LastOrderDate != nil {
		s := c.LastOrderDate.String()
		dto.LastOrderDate = &s
	}
	return dto
}

func toClientDTOs(clients []engine.Client) []ClientDTO {
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	return dtos
}
