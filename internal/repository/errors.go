// Package repository defines error values that are reused across
// multiple repositories. These sentinels let handlers distinguish
// failure scenarios with errors.Is/errors.As and map them onto HTTP
// responses.
package repository

import (
	"errors"
	"fmt"
	"time"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as releasing another holder's seat
// lock. Handlers should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrTripNotFound is returned when a referenced trip does not exist.
var ErrTripNotFound = errors.New("trip not found")

// ErrInvalidState is returned when a status transition outside the
// booking state machine is requested, such as cancelling a PENDING
// booking or confirming an EXPIRED one. Handlers should translate
// this into an HTTP 409 response.
var ErrInvalidState = errors.New("invalid booking state for this operation")

// LockHeldError reports that a lock acquire attempt was denied
// because another holder owns an active lock on the seat. HeldBy is
// already masked for display.
type LockHeldError struct {
	HeldBy    string
	ExpiresAt time.Time
}

func (e *LockHeldError) Error() string {
	return fmt.Sprintf("seat locked by %s until %s", e.HeldBy, e.ExpiresAt.UTC().Format(time.RFC3339))
}
