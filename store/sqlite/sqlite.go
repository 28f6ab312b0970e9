/*
Package sqlite provides a SQLite-backed ClientRepository.

PURPOSE:
  Production persistence for client documents. Each client is one row;
  the order history is a JSON document column, mirroring the document
  store this data originally lived in, so legacy records load unchanged.

NORMALIZATION ON READ:
  Rows are decoded through engine.RawClient / engine.NormalizeClient, so
  the rest of the system only ever sees canonical shapes. Legacy rows
  with single-item orders, string-typed money, "dob" birth dates and
  missing status/paidAmount fields all load.

OPTIMISTIC CONCURRENCY:
  Every row carries a version counter. UpdateClient runs a conditional
  UPDATE (WHERE id = ? AND version = ?); zero rows affected means a
  stale token and the caller gets engine.ErrConcurrentModification.

WAL MODE:
  SQLite is opened with WAL so readers don't block behind the single
  writer.

USAGE:
  repo, err := sqlite.New("./data/orders.db")
  if err != nil { ... }
  defer repo.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory:   In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/order-engine/engine"
	"github.com/warp/order-engine/store"
)

// Repository implements store.ClientRepository on SQLite.
type Repository struct {
	db *sql.DB
	mu sync.Mutex
}

var _ store.ClientRepository = (*Repository)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	r := &Repository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return r, nil
}

func (r *Repository) Close() error { return r.db.Close() }

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL,
		birth_date TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		first_order_date TEXT,
		last_order_date TEXT,
		orders_json TEXT NOT NULL DEFAULT '[]',
		version INTEGER NOT NULL DEFAULT 1
	);

	-- Snapshot listing is creation-descending (hot path).
	CREATE INDEX IF NOT EXISTS idx_clients_created_at
		ON clients(created_at DESC);

	-- Codes are collision-checked for NEW rows only; legacy rows may
	-- already collide, so the index is non-unique.
	CREATE INDEX IF NOT EXISTS idx_clients_code
		ON clients(code);
	`
	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// ROW CODEC
// =============================================================================

type clientRow struct {
	id             string
	name           string
	phone          string
	address        string
	code           string
	birthDate      string
	createdAt      string
	firstOrderDate sql.NullString
	lastOrderDate  sql.NullString
	ordersJSON     string
	version        int64
}

const clientColumns = `id, name, phone, address, code, birth_date, created_at,
	first_order_date, last_order_date, orders_json, version`

func scanClient(scan func(...any) error) (engine.Client, error) {
	var row clientRow
	if err := scan(
		&row.id, &row.name, &row.phone, &row.address, &row.code,
		&row.birthDate, &row.createdAt, &row.firstOrderDate,
		&row.lastOrderDate, &row.ordersJSON, &row.version,
	); err != nil {
		return engine.Client{}, err
	}

	raw := engine.RawClient{
		ID:             row.id,
		Name:           row.name,
		Phone:          row.phone,
		Address:        row.address,
		Code:           row.code,
		BirthDate:      row.birthDate,
		CreatedAt:      row.createdAt,
		FirstOrderDate: row.firstOrderDate.String,
		LastOrderDate:  row.lastOrderDate.String,
	}
	// A corrupted order document degrades to an empty history rather
	// than failing the whole snapshot.
	_ = json.Unmarshal([]byte(row.ordersJSON), &raw.Orders)

	c := engine.NormalizeClient(raw)
	c.Version = row.version
	return c, nil
}

// persistOrder is the on-disk order shape: plain JSON numbers, matching
// what the original document store held.
type persistOrder struct {
	Items              []persistItem `json:"items"`
	DiscountPercentage float64       `json:"discountPercentage"`
	Date               string        `json:"date"`
	Status             string        `json:"status"`
	PaidAmount         float64       `json:"paidAmount"`
	Subtotal           float64       `json:"subtotal"`
	Total              float64       `json:"total"`
	Cost               float64       `json:"cost"`
	Profit             float64       `json:"profit"`
}

type persistItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func encodeOrders(orders []engine.Order) (string, error) {
	out := make([]persistOrder, len(orders))
	for i, o := range orders {
		po := persistOrder{
			Items:              make([]persistItem, len(o.Items)),
			DiscountPercentage: o.DiscountPercentage.InexactFloat64(),
			Date:               o.Date.String(),
			Status:             string(o.Status),
			PaidAmount:         o.PaidAmount.InexactFloat64(),
			Subtotal:           o.Subtotal.InexactFloat64(),
			Total:              o.Total.InexactFloat64(),
			Cost:               o.Cost.InexactFloat64(),
			Profit:             o.Profit.InexactFloat64(),
		}
		for j, it := range o.Items {
			po.Items[j] = persistItem{Name: it.Name, Price: it.Price.InexactFloat64()}
		}
		out[i] = po
	}
	buf, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encode orders: %w", err)
	}
	return string(buf), nil
}

func nullDate(d *engine.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// =============================================================================
// REPOSITORY OPERATIONS
// =============================================================================

func (r *Repository) ListClients(ctx context.Context) ([]engine.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	out := []engine.Client{}
	for rows.Next() {
		c, err := scanClient(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) GetClient(ctx context.Context, id engine.ClientID) (engine.Client, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, string(id))
	c, err := scanClient(row.Scan)
	if err == sql.ErrNoRows {
		return engine.Client{}, engine.ErrClientNotFound
	}
	if err != nil {
		return engine.Client{}, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateClient(ctx context.Context, fields store.NewClientFields) (engine.Client, error) {
	// Code assignment must not race with itself.
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := store.NewClientID()
	if err != nil {
		return engine.Client{}, err
	}

	taken, err := r.takenCodes(ctx)
	if err != nil {
		return engine.Client{}, err
	}
	code, err := store.GenerateCode(taken)
	if err != nil {
		return engine.Client{}, err
	}

	createdAt := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, address, code, birth_date, created_at, orders_json, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, '[]', 1)`,
		string(id), fields.Name, fields.Phone, fields.Address, code,
		fields.BirthDate.String(), createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return engine.Client{}, fmt.Errorf("create client: %w", err)
	}

	return engine.Client{
		ID:        id,
		Name:      fields.Name,
		Phone:     fields.Phone,
		Address:   fields.Address,
		Code:      code,
		BirthDate: fields.BirthDate,
		CreatedAt: createdAt,
		Orders:    []engine.Order{},
		Version:   1,
	}, nil
}

func (r *Repository) takenCodes(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]bool)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		taken[code] = true
	}
	return taken, rows.Err()
}

func (r *Repository) UpdateClient(ctx context.Context, id engine.ClientID, version int64, mutate func(*engine.Client) error) (engine.Client, error) {
	current, err := r.GetClient(ctx, id)
	if err != nil {
		return engine.Client{}, err
	}
	if current.Version != version {
		return engine.Client{}, engine.ErrConcurrentModification
	}

	next := current.Clone()
	if err := mutate(&next); err != nil {
		return engine.Client{}, err
	}

	// Identity and concurrency fields are store-owned.
	next.ID = current.ID
	next.Code = current.Code
	next.CreatedAt = current.CreatedAt

	ordersJSON, err := encodeOrders(next.Orders)
	if err != nil {
		return engine.Client{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE clients
		SET name = ?, phone = ?, address = ?, birth_date = ?,
		    first_order_date = ?, last_order_date = ?, orders_json = ?,
		    version = version + 1
		WHERE id = ? AND version = ?`,
		next.Name, next.Phone, next.Address, next.BirthDate.String(),
		nullDate(next.FirstOrderDate), nullDate(next.LastOrderDate),
		ordersJSON, string(id), version,
	)
	if err != nil {
		return engine.Client{}, fmt.Errorf("update client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return engine.Client{}, err
	}
	if affected == 0 {
		// Row changed (or vanished) between read and write.
		return engine.Client{}, engine.ErrConcurrentModification
	}

	next.Version = version + 1
	return next, nil
}

func (r *Repository) DeleteClient(ctx context.Context, id engine.ClientID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrClientNotFound
	}
	return nil
}
