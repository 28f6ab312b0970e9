package sqlite

import "context"

// RawRow is a client row written verbatim, bypassing the repository's
// write path. Lets tests seed legacy schema generations.
type RawRow struct {
	ID         string
	Name       string
	Phone      string
	Address    string
	Code       string
	BirthDate  string
	CreatedAt  string
	OrdersJSON string
	Version    int64
}

// SeedRaw inserts a row as-is. Test helper.
func (r *Repository) SeedRaw(ctx context.Context, row RawRow) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, phone, address, code, birth_date, created_at, orders_json, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Name, row.Phone, row.Address, row.Code,
		row.BirthDate, row.CreatedAt, row.OrdersJSON, row.Version,
	)
	return err
}
