// Package common holds sentinel errors shared by every layer of the service.
// Callers match them with errors.Is; the HTTP layer maps them to status codes.
package common

import (
	"errors"
	"fmt"
)

var (
	// store errors
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrStoreUnavailable = errors.New("store unavailable")

	// input errors
	ErrValidation = errors.New("validation error")

	// auth errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")

	// token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
)

// PublicError attaches a caller-facing message to a sentinel kind.
type PublicError struct {
	Kind error
	Msg  string
}

func (e *PublicError) Error() string { return e.Msg }

func (e *PublicError) Unwrap() error { return e.Kind }

// Errorf returns an error that matches kind under errors.Is and whose text is
// safe to send to clients.
func Errorf(kind error, format string, args ...any) error {
	return &PublicError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
