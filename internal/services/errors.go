package services

import "errors"

// Error taxonomy surfaced to the HTTP layer. Handlers map these onto status
// codes in one place; anything unrecognized becomes a 500.
var (
	// ErrInvalidInput marks a validation failure (400)
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated marks a missing or failed identity (401)
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden marks an authenticated caller without sufficient privilege (403)
	ErrForbidden = errors.New("no permission")
	// ErrNotFound marks a missing entity (404)
	ErrNotFound = errors.New("not found")
	// ErrDuplicate marks a unique-key conflict on create (400)
	ErrDuplicate = errors.New("already exists")
)
