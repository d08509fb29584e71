// Package common defines shared constants and sentinel errors used across
// the client and server halves of CostMate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Validation errors surfaced to the HTTP layer as 400s.
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid, unknown or revoked bearer token). Unknown and
	// revoked tokens are deliberately indistinguishable to callers.
	ErrInvalidToken = errors.New("invalid token")
)
