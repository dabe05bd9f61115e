// Package apperr defines the error taxonomy shared by all domain services.
// Handlers never inspect store errors directly; services translate them into
// one of these classes and the central HTTP error handler maps each class to
// a status code and envelope message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated covers missing, malformed, or expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden covers a valid identity with a disallowed role or a
	// cross-identity access attempt.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict covers unique-constraint violations.
	ErrConflict = errors.New("conflict")
	// ErrValidation covers schema constraint violations (length, enum,
	// required field).
	ErrValidation = errors.New("validation failed")
)

// E wraps a taxonomy sentinel with a human-readable message. The message is
// what reaches the client; the sentinel decides the status code.
func E(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

// Ef is E with a format string.
func Ef(kind error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Status returns the HTTP status for an error. Unclassified errors are
// internal. The original client contract returns 403 for both missing
// credentials and disallowed roles, so both map there.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusForbidden
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for an error. Internal errors
// are masked; classified errors surface the text after the sentinel prefix.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Internal server error"
	}
	msg := err.Error()
	for _, kind := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrValidation} {
		prefix := kind.Error() + ": "
		if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}
