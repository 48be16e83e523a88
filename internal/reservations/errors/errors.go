package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	// ErrLockHeld means another request currently holds the slot exclusion.
	ErrLockHeld = errors.New("slot lock held by another request")
)
