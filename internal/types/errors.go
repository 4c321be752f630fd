package types

import "errors"

// Domain errors. Wrap with %w and test with errors.Is; handlers map them to
// HTTP statuses.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPlaceService marks unexpected store or logic failures during a place
	// operation.
	ErrPlaceService = errors.New("place service failure")
)
