// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Input errors.
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("already exists")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Access errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Token verification kinds. Each one also matches ErrUnauthorized.
	ErrMalformedToken   = &tokenError{msg: "malformed token"}
	ErrInvalidSignature = &tokenError{msg: "invalid token signature"}
	ErrTokenExpired     = &tokenError{msg: "token expired"}
)

type tokenError struct {
	msg string
}

func (e *tokenError) Error() string { return e.msg }

// Is lets every token failure be matched as ErrUnauthorized.
func (e *tokenError) Is(target error) bool {
	return target == ErrUnauthorized
}
