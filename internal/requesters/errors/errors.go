package errors

import "errors"

var (
	ErrNotFound = errors.New("requester not found")

	ErrInvalidID = errors.New("invalid requester ID format")

	ErrDuplicateEmail = errors.New("requester email already in use")
)
