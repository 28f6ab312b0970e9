// Package memory provides an in-memory ClientRepository for tests and
// development. Snapshots are deep copies: callers never share backing
// arrays with the store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/order-engine/engine"
	"github.com/warp/order-engine/store"
)

// =============================================================================
// MEMORY REPOSITORY
// =============================================================================

type Repository struct {
	mu      sync.RWMutex
	clients map[engine.ClientID]engine.Client

	// now is swappable so tests control CreatedAt stamping.
	now func() time.Time
}

var _ store.ClientRepository = (*Repository)(nil)

func New() *Repository {
	return &Repository{
		clients: make(map[engine.ClientID]engine.Client),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// NewWithClock builds a repository stamping CreatedAt from the given
// clock. Test helper.
func NewWithClock(now func() time.Time) *Repository {
	r := New()
	r.now = now
	return r
}

func (r *Repository) ListClients(_ context.Context) ([]engine.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]engine.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c.Clone())
	}
	// Snapshot order is creation-descending, ties broken by ID so the
	// order is reproducible.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Repository) GetClient(_ context.Context, id engine.ClientID) (engine.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[id]
	if !ok {
		return engine.Client{}, engine.ErrClientNotFound
	}
	return c.Clone(), nil
}

func (r *Repository) CreateClient(_ context.Context, fields store.NewClientFields) (engine.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := store.NewClientID()
	if err != nil {
		return engine.Client{}, err
	}

	taken := make(map[string]bool, len(r.clients))
	for _, c := range r.clients {
		taken[c.Code] = true
	}
	code, err := store.GenerateCode(taken)
	if err != nil {
		return engine.Client{}, err
	}

	c := engine.Client{
		ID:        id,
		Name:      fields.Name,
		Phone:     fields.Phone,
		Address:   fields.Address,
		BirthDate: fields.BirthDate,
		Code:      code,
		CreatedAt: r.now(),
		Orders:    []engine.Order{},
		Version:   1,
	}
	r.clients[id] = c
	return c.Clone(), nil
}

func (r *Repository) UpdateClient(_ context.Context, id engine.ClientID, version int64, mutate func(*engine.Client) error) (engine.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.clients[id]
	if !ok {
		return engine.Client{}, engine.ErrClientNotFound
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
	next.Version = current.Version + 1

	r.clients[id] = next
	return next.Clone(), nil
}

func (r *Repository) DeleteClient(_ context.Context, id engine.ClientID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[id]; !ok {
		return engine.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *Repository) Close() error { return nil }
