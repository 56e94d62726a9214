// Package apperrors defines the error kinds returned by services and repositories.
//
// Lower layers wrap one of the sentinel kinds with context, for example
//
//	fmt.Errorf("%w: restaurant not found with id of %d", apperrors.ErrNotFound, id)
//
// and the HTTP layer maps the kind to a status code with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrValidation marks malformed or missing input and duplicate unique fields
	ErrValidation = errors.New("validation error")
	// ErrAuthentication marks a missing or invalid token and bad credentials
	ErrAuthentication = errors.New("authentication error")
	// ErrAuthorization marks a failed role or ownership check
	ErrAuthorization = errors.New("authorization error")
	// ErrNotFound marks a missing resource
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded marks a rejected reservation admission
	ErrQuotaExceeded = errors.New("quota exceeded")
)

// Validation returns an ErrValidation wrapping the formatted message
func Validation(format string, args ...any) error {
	return kindf(ErrValidation, format, args...)
}

// NotFound returns an ErrNotFound wrapping the formatted message
func NotFound(format string, args ...any) error {
	return kindf(ErrNotFound, format, args...)
}

// Authorization returns an ErrAuthorization wrapping the formatted message
func Authorization(format string, args ...any) error {
	return kindf(ErrAuthorization, format, args...)
}

// Authentication returns an ErrAuthentication wrapping the formatted message
func Authentication(format string, args ...any) error {
	return kindf(ErrAuthentication, format, args...)
}

// QuotaExceeded returns an ErrQuotaExceeded wrapping the formatted message
func QuotaExceeded(format string, args ...any) error {
	return kindf(ErrQuotaExceeded, format, args...)
}

func kindf(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// kindError carries a client-facing message and a kind for errors.Is
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Status maps an error to its HTTP status code
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message for an error.
// Uncategorized errors never leak their text.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "internal server error"
	}

	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}

	// Plain "%w: detail" wrapping: strip the kind prefix
	msg := err.Error()
	for _, kind := range []error{ErrValidation, ErrQuotaExceeded, ErrAuthentication, ErrAuthorization, ErrNotFound} {
		if rest, ok := strings.CutPrefix(msg, kind.Error()+": "); ok {
			return rest
		}
	}
	return msg
}
