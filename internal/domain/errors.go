package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports missing or malformed input, detected at the
// boundary before any workflow runs. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a formatted validation error.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthError reports a bad signature or a missing/expired session.
type AuthError struct {
	Msg       string
	Forbidden bool // true for role violations (403), false for 401
}

func (e *AuthError) Error() string { return e.Msg }

// NewAuthError builds a 401-class auth error.
func NewAuthError(format string, args ...any) *AuthError {
	return &AuthError{Msg: fmt.Sprintf(format, args...)}
}

// NewForbiddenError builds a 403-class auth error.
func NewForbiddenError(format string, args ...any) *AuthError {
	return &AuthError{Msg: fmt.Sprintf(format, args...), Forbidden: true}
}

// RegistryError reports an on-chain submission or read failure. The
// underlying cause is surfaced; nothing in this service retries it.
type RegistryError struct {
	Registry string
	Op       string
	Err      error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("%s registry: %s: %v", e.Registry, e.Op, e.Err)
}

func (e *RegistryError) Unwrap() error { return e.Err }

// NewRegistryError wraps a gateway failure with its registry and operation.
func NewRegistryError(registry, op string, err error) *RegistryError {
	return &RegistryError{Registry: registry, Op: op, Err: err}
}

// NotFoundError reports an unknown id or address where a lookup was
// expected to succeed.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NewNotFoundError builds a not-found error for a resource and key.
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// HTTPStatus maps a domain error to its response status code.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ae *AuthError
		re *RegistryError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ae):
		if ae.Forbidden {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
