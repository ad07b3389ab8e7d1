package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. check-out before check-in, too many guests).
// Handlers should map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrPermissionDenied is returned when a write is attempted by a caller the
// authorization policy does not allow. Handlers map this to HTTP 403.
var ErrPermissionDenied = errors.New("permission denied")

// ErrAuthenticationRequired is returned by caller-scoped reads when the
// caller is anonymous. Handlers map this to HTTP 401.
var ErrAuthenticationRequired = errors.New("authentication required")

// ErrInvalidStateTransition is returned when a booking transition targets
// the status the booking already has. No mutation has happened.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrConflict is returned when a write collides with a uniqueness rule
// (one review per listing and user, one user per username).
var ErrConflict = errors.New("conflict")

// ValidationError describes a business rule violation on a single field.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a *ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StateTransitionError reports that a booking is already in the status a
// transition asked for. errors.Is(err, ErrInvalidStateTransition) reports true.
type StateTransitionError struct {
	Status BookingStatus
}

// Error returns the human-readable detail sent to clients,
// e.g. "Booking is already cancelled.".
func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("Booking is already %s.", e.Status)
}

func (e *StateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// ConflictError carries the client-facing detail of a uniqueness violation.
// errors.Is(err, ErrConflict) reports true for it.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string { return e.Detail }

func (e *ConflictError) Unwrap() error { return ErrConflict }
