package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Category sentinels for the core failure taxonomy. Callers classify with
// errors.Is and must not depend on message text.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalid          = errors.New("invalid request")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrConflict         = errors.New("conflict")
)

// NotFoundf wraps a formatted message with ErrNotFound.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalidf wraps a formatted message with ErrInvalid.
func Invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// CapacityExceededf wraps a formatted message with ErrCapacityExceeded.
func CapacityExceededf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, fmt.Sprintf(format, args...))
}

// Conflictf wraps a formatted message with ErrConflict.
func Conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// HTTPStatus maps a categorized error to its HTTP equivalent. Uncategorized
// errors are treated as internal failures.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether the caller may safely re-issue the whole
// operation verbatim. Only transaction-level serialization conflicts are.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
