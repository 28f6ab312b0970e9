/*
handlers.go - HTTP API handlers for the order-management system

PURPOSE:
  Exposes the order engine via REST. Handlers perform the read-modify-
  write cycle against the repository and delegate every rule to the pure
  engine package.

ENDPOINTS:
  Clients:
    GET    /api/clients                      List (q=, status=, sort=)
    POST   /api/clients                      Create client
    GET    /api/clients/{id}                 Get client
    PUT    /api/clients/{id}                 Edit contact fields
    DELETE /api/clients/{id}                 Delete client
    GET    /api/clients/{id}/ledger          Paid/remaining rollup

  Orders (index-addressed within their client):
    POST   /api/clients/{id}/orders                  Append order
    PUT    /api/clients/{id}/orders/{index}          Replace order
    DELETE /api/clients/{id}/orders/{index}          Remove order
    POST   /api/clients/{id}/orders/{index}/status   Toggle status

  Reports:
    GET    /api/reports/summary?year=        Fleet summary + monthly series
    GET    /api/reports/profits?date=        Flattened profit report

  Notifications:
    GET    /api/notifications                Today's derived events

CONCURRENCY:
  Every write body carries the client's version token from the last
  read. A stale token maps to 409 and the UI re-fetches.

ERROR HANDLING:
  - 400: validation errors, invalid input
  - 404: unknown client or order index
  - 409: stale version token
  - 500: repository failures

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/order-engine/engine"
	"github.com/warp/order-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Repo  store.ClientRepository
	Clock engine.Clock
}

// NewHandler creates a handler over the given repository, reading time
// from the system clock.
func NewHandler(repo store.ClientRepository) *Handler {
	return &Handler{Repo: repo, Clock: engine.SystemClock{}}
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns the filtered, ranked client list.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Repo.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	// Filter first, then rank.
	clients = engine.FilterClients(clients, r.URL.Query().Get("q"))
	if s := r.URL.Query().Get("status"); s != "" {
		status := engine.Status(s)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown status filter", nil)
			return
		}
		clients = engine.FilterClientsByStatus(clients, status)
	}
	mode := engine.ParseRankMode(r.URL.Query().Get("sort"))
	clients = engine.RankClients(clients, mode, h.Clock.Today())

	writeJSON(w, http.StatusOK, toClientDTOs(clients))
}

// CreateClient creates a new client. ID, code and createdAt are assigned
// by the repository.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid client",
			&engine.ValidationError{Field: "name", Message: "must not be empty"})
		return
	}

	c, err := h.Repo.CreateClient(r.Context(), store.NewClientFields{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		BirthDate: engine.ParseDateLenient(req.BirthDate),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(c))
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.GetClient(r.Context(), engine.ClientID(chi.URLParam(r, "id")))
	if err != nil {
		writeErrorFor(w, "Failed to get client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

// UpdateClient edits contact fields. The order history is untouched.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := engine.ClientID(chi.URLParam(r, "id"))
	c, err := h.Repo.UpdateClient(r.Context(), id, req.Version, func(c *engine.Client) error {
		c.Name = req.Name
		c.Phone = req.Phone
		c.Address = req.Address
		c.BirthDate = engine.ParseDateLenient(req.BirthDate)
		return nil
	})
	if err != nil {
		writeErrorFor(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

// DeleteClient removes a client and its whole order history.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.DeleteClient(r.Context(), engine.ClientID(chi.URLParam(r, "id")))
	if err != nil {
		writeErrorFor(w, "Failed to delete client", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLedger returns the client's paid/remaining rollup.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	c, err := h.Repo.GetClient(r.Context(), engine.ClientID(chi.URLParam(r, "id")))
	if err != nil {
		writeErrorFor(w, "Failed to get client", err)
		return
	}
	s := engine.ClientLedger(c)
	writeJSON(w, http.StatusOK, LedgerDTO{
		ClientID:       string(c.ID),
		TotalSpent:     f64(s.TotalSpent),
		TotalPaid:      f64(s.TotalPaid),
		TotalRemaining: f64(s.TotalRemaining),
		OrderCount:     s.OrderCount,
	})
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// orderFromRequest builds and recomputes an order from a request body.
func orderFromRequest(req OrderRequest) (engine.Order, error) {
	if len(req.Items) == 0 {
		return engine.Order{}, engine.ErrEmptyOrder
	}

	items := make([]engine.LineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = engine.LineItem{Name: it.Name, Price: decimal.NewFromFloat(it.Price)}
	}

	discount := decimal.NewFromFloat(req.DiscountPercentage)
	if engine.DiscountOutOfRange(discount) {
		// Applied as-is for historical compatibility; just make it visible.
		log.Printf("order discount out of range: %s", discount)
	}

	o := engine.NewOrder(items, discount, engine.ParseDateLenient(req.Date))
	o.PaidAmount = decimal.NewFromFloat(req.PaidAmount)
	if req.Status != "" {
		o.Status = engine.ParseStatus(req.Status)
	}
	return o, nil
}

// AddOrder appends an order to the client's history.
func (h *Handler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	order, err := orderFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order", err)
		return
	}

	id := engine.ClientID(chi.URLParam(r, "id"))
	c, err := h.Repo.UpdateClient(r.Context(), id, req.Version, func(c *engine.Client) error {
		*c = engine.AddOrder(*c, order)
		return nil
	})
	if err != nil {
		writeErrorFor(w, "Failed to add order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(c))
}

// UpdateOrder replaces the order at {index} in place, fully recomputed.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	index, ok := orderIndex(w, r)
	if !ok {
		return
	}
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	order, err := orderFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order", err)
		return
	}

	id := engine.ClientID(chi.URLParam(r, "id"))
	c, err := h.Repo.UpdateClient(r.Context(), id, req.Version, func(c *engine.Client) error {
		next, err := engine.UpdateOrder(*c, index, order)
		if err != nil {
			return err
		}
		*c = next
		return nil
	})
	if err != nil {
		writeErrorFor(w, "Failed to update order", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

// DeleteOrder removes the order at {index}.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	index, ok := orderIndex(w, r)
	if !ok {
		return
	}
	var req VersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id := engine.ClientID(chi.URLParam(r, "id"))
	c, err := h.Repo.UpdateClient(r.Context(), id, req.Version, func(c *engine.Client) error {
		next, err := engine.RemoveOrder(*c, index)
		if err != nil {
			return err
		}
		*c = next
		return nil
	})
	if err != nil {
		writeErrorFor(w, "Failed to delete order", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

// SetOrderStatus toggles the fulfillment status of the order at {index}.
// Any state may move to any other; financial fields never change here.
func (h *Handler) SetOrderStatus(w http.ResponseWriter, r *http.Request) {
	index, ok := orderIndex(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := engine.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	id := engine.ClientID(chi.URLParam(r, "id"))
	c, err := h.Repo.UpdateClient(r.Context(), id, req.Version, func(c *engine.Client) error {
		next, err := engine.UpdateOrderStatus(*c, index, status)
		if err != nil {
			return err
		}
		*c = next
		return nil
	})
	if err != nil {
		writeErrorFor(w, "Failed to set order status", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(c))
}

func orderIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "Invalid order index", err)
		return 0, false
	}
	return index, true
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// GetSummary returns the dashboard rollup for a year (default: current).
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Repo.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	year := h.Clock.Today().Year()
	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}

	s := engine.Summarize(clients, year)
	dto := SummaryDTO{
		Year:          year,
		ClientCount:   s.ClientCount,
		OrderCount:    s.OrderCount,
		TotalRevenue:  f64(s.TotalRevenue),
		LatestClients: toClientDTOs(engine.LatestClients(clients, 5)),
	}
	for i, m := range s.MonthlySeries {
		dto.MonthlySeries[i] = f64(m)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetProfitReport returns the flattened profit rows, optionally filtered
// to a single day.
func (h *Handler) GetProfitReport(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Repo.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	day := engine.ParseDateLenient(r.URL.Query().Get("date"))
	rows, totals := engine.ProfitReport(clients, day)

	dto := ProfitReportDTO{
		Rows:          make([]ProfitRowDTO, len(rows)),
		TotalRevenue:  f64(totals.Revenue),
		TotalCost:     f64(totals.Cost),
		TotalProfit:   f64(totals.Profit),
		TotalDiscount: f64(totals.Discount),
	}
	for i, row := range rows {
		dto.Rows[i] = ProfitRowDTO{
			ClientName:     row.ClientName,
			OrderName:      row.OrderName,
			Cost:           f64(row.Cost),
			Profit:         f64(row.Profit),
			DiscountAmount: f64(row.DiscountAmount),
			Total:          f64(row.Total),
			Date:           row.Date.String(),
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// NOTIFICATION HANDLERS
// =============================================================================

// ListNotifications derives today's events from a fresh snapshot.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Repo.ListClients(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	notes := engine.DeriveNotifications(clients, h.Clock.Today())
	dtos := make([]NotificationDTO, len(notes))
	for i, n := range notes {
		dtos[i] = NotificationDTO{
			Type:       string(n.Type),
			Text:       n.Text,
			ClientID:   string(n.ClientID),
			ClientName: n.ClientName,
			Phone:      n.Phone,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeErrorFor maps engine/store errors to HTTP statuses.
func writeErrorFor(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Client not found", nil)
	case errors.Is(err, engine.ErrOrderIndex):
		writeError(w, http.StatusNotFound, "Order not found", nil)
	case engine.IsConflict(err):
		writeError(w, http.StatusConflict, "Client was modified concurrently; re-fetch and retry", nil)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
