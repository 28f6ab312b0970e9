/*
Package store defines the repository collaborator the engine's callers
read snapshots from and write clients back through.

PURPOSE:
  The core never fetches or persists: the presentation layer lists a
  snapshot, runs the pure engine over it, and writes the result back
  here. Two implementations exist: memory (tests/dev) and sqlite
  (production).

OPTIMISTIC CONCURRENCY:
  Historically writes were unconditional read-modify-write, so two
  concurrent edits of the same client silently clobbered each other.
  Every client therefore carries a version token and UpdateClient is
  conditional on it: a stale token fails with ErrConcurrentModification
  and the caller re-fetches and retries. DeleteClient stays
  unconditional (removal wins).

CLIENT CODES:
  The 4-digit display code used to be a client-side random draw with no
  uniqueness check. It is now assigned here at creation, collision-
  checked against every existing code.
*/
package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/warp/order-engine/engine"
)

// =============================================================================
// REPOSITORY INTERFACE
// =============================================================================

// NewClientFields is the caller-supplied part of a new client. ID, code,
// CreatedAt and version are assigned by the repository.
type NewClientFields struct {
	Name      string
	Phone     string
	Address   string
	BirthDate engine.Date
}

// ClientRepository hands out snapshots and applies writes.
type ClientRepository interface {
	// ListClients returns the full snapshot, newest creation first.
	// Callers own the returned slice.
	ListClients(ctx context.Context) ([]engine.Client, error)

	// GetClient returns one client, or engine.ErrClientNotFound.
	GetClient(ctx context.Context, id engine.ClientID) (engine.Client, error)

	// CreateClient persists a new client with a fresh ID, a collision-
	// checked 4-digit code, CreatedAt, and version 1.
	CreateClient(ctx context.Context, fields NewClientFields) (engine.Client, error)

	// UpdateClient applies mutate to the stored client iff version
	// matches the stored token, then bumps the token. Returns the
	// updated client, or engine.ErrConcurrentModification on a stale
	// token.
	UpdateClient(ctx context.Context, id engine.ClientID, version int64, mutate func(*engine.Client) error) (engine.Client, error)

	// DeleteClient removes the client. Not-found is an error; the
	// delete itself is unconditional.
	DeleteClient(ctx context.Context, id engine.ClientID) error

	Close() error
}

// =============================================================================
// ID AND CODE ASSIGNMENT - Shared by implementations
// =============================================================================

// NewClientID draws a random 16-hex identifier.
func NewClientID() (engine.ClientID, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate client id: %w", err)
	}
	return engine.ClientID(hex.EncodeToString(buf)), nil
}

// codeSpace is the number of 4-digit codes (1000-9999).
const codeSpace = 9000

// GenerateCode draws a 4-digit code not present in taken. Random draw
// with a bounded number of retries, then a linear sweep so a nearly full
// space still terminates; engine.ErrCodeSpaceExhausted only when every
// code is taken.
func GenerateCode(taken map[string]bool) (string, error) {
	for attempt := 0; attempt < 32; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
		if err != nil {
			return "", fmt.Errorf("generate client code: %w", err)
		}
		code := fmt.Sprintf("%04d", 1000+n.Int64())
		if !taken[code] {
			return code, nil
		}
	}
	for i := 0; i < codeSpace; i++ {
		code := fmt.Sprintf("%04d", 1000+i)
		if !taken[code] {
			return code, nil
		}
	}
	return "", engine.ErrCodeSpaceExhausted
}
