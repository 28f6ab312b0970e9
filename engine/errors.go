/*
errors.go - Centralized error types for the order engine

PURPOSE:
  All error types in one place. The core is deliberately forgiving:
  malformed historical records are defaulted, not rejected, so most of
  these errors surface only at the repository/API boundary.

ERROR CATEGORIES:
  1. Boundary errors   - not-found, conflicting writes
  2. Input errors      - structurally unusable requests (empty item list,
                         out-of-range order index)
  3. Validation errors - boundary-level strictness a caller may opt into

USAGE:
  Callers branch with errors.Is / errors.As:

    if errors.Is(err, engine.ErrConcurrentModification) {
        // re-fetch snapshot and retry
    }
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrConcurrentModification is returned when a write carries a stale
	// version token. The caller must re-fetch and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrEmptyOrder is returned when an order is submitted with no items.
	// Inside the core an empty item list computes to zero totals; the
	// write boundary rejects it instead.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrOrderIndex is returned when an order index is out of range for
	// the client's history. Orders are addressed by position, so a stale
	// index after a concurrent delete lands here.
	ErrOrderIndex = errors.New("order index out of range")

	// ErrCodeSpaceExhausted is returned when no unused 4-digit client
	// code can be found.
	ErrCodeSpaceExhausted = errors.New("client code space exhausted")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError reports a field-level input problem at the boundary.
// The pure core never produces these; it coerces instead.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing client.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}

// IsConflict reports whether the error indicates a stale-snapshot write.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrOrderIndex) ||
		errors.As(err, &ve)
}
