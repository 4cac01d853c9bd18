package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrConflict indicates that the request is not allowed in the current state of the resource.
var ErrConflict = errors.New("state conflict")

// Register validation taxonomy. Every entry wraps ErrValidation so handlers can
// treat them uniformly while tests can still match the specific cause.
var (
	// ErrInvalidAmount: amount missing, non-numeric, zero or negative where a positive value is required.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	// ErrMissingField: a required field (concept, category, method) is empty.
	ErrMissingField = fmt.Errorf("%w: missing required field", ErrValidation)
	// ErrExceedsBalance: a payment amount exceeds the student's outstanding balance.
	ErrExceedsBalance = fmt.Errorf("%w: amount exceeds outstanding balance", ErrValidation)
	// ErrInsufficientMixComponents: a mixed payment has fewer funded methods than the policy requires.
	ErrInsufficientMixComponents = fmt.Errorf("%w: mixed payment has too few funded methods", ErrValidation)
	// ErrInconsistentTotals: register aggregates do not add up.
	ErrInconsistentTotals = fmt.Errorf("%w: register totals are inconsistent", ErrValidation)
)

// Register state-machine violations.
var (
	ErrNotOpen     = fmt.Errorf("%w: no cash register is open", ErrConflict)
	ErrAlreadyOpen = fmt.Errorf("%w: a cash register is already open", ErrConflict)
	ErrClosed      = fmt.Errorf("%w: cash register is closed", ErrConflict)
	// ErrRequestInFlight is returned when the same operator fires a mutating action while a previous one is still running.
	ErrRequestInFlight = fmt.Errorf("%w: another request for this action is still in progress", ErrConflict)
)

// ErrBadUpstreamResponse is returned when the backend answers 2xx with a body that does not match its schema.
var ErrBadUpstreamResponse = errors.New("backend returned an invalid response")

// ErrConfirmationRequired is returned when an irrevocable action was requested without explicit confirmation.
var ErrConfirmationRequired = errors.New("explicit confirmation required")

// UpstreamError carries a failure reported by the external backend. Message is
// the server's own message and is shown to the user verbatim.
type UpstreamError struct {
	StatusCode int
	Message    string
	Op         string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: backend responded %d: %s", e.Op, e.StatusCode, e.Message)
}

// IsClientError reports whether the backend rejected the request itself (4xx).
func (e *UpstreamError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}
