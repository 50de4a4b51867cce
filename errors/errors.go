package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Validation failures, always rejected with no side effects.
	ErrMessageRequired = fmt.Errorf("message required")
	ErrMessageTooLong  = fmt.Errorf("message exceeds maximum length")
	ErrInvalidPassword = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidUsername = fmt.Errorf("invalid username")

	// Business rule violations surfaced to the caller.
	ErrInsufficientCredit = fmt.Errorf("insufficient tokens")
	ErrUserAlreadyExists  = fmt.Errorf("username already taken")

	// Authentication failures. Kept generic to prevent user enumeration.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	// Storage lookups.
	ErrUserNotFound  = fmt.Errorf("user not found")
	ErrModelNotFound = fmt.Errorf("no persisted model for this corpus")

	// Startup failures: the process must not begin serving requests.
	ErrEmptyCorpus      = fmt.Errorf("training corpus is empty")
	ErrModelUnavailable = fmt.Errorf("model unavailable")

	// Programming-error condition: the classifier emitted an index
	// outside its own label set.
	ErrUnknownLabel = fmt.Errorf("label index out of range")
)

// MapToHTTPStatus translates domain errors into HTTP status codes for the API
// layer, so handlers never hardcode statuses per call site.
func MapToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMessageRequired),
		errors.Is(err, ErrMessageTooLong),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrInvalidUsername),
		errors.Is(err, ErrInsufficientCredit),
		errors.Is(err, ErrUserAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
