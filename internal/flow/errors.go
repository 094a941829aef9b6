package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationRequired is returned by Submit when no principal is settled.
	ErrAuthenticationRequired = errors.New("flow: authentication required")

	// ErrSubmitInFlight is returned when Submit is invoked while a previous
	// Submit on the same flow has not finished. The caller must treat it as a
	// no-op, not a failure.
	ErrSubmitInFlight = errors.New("flow: submit already in flight")

	// ErrNotInReview is returned when Submit is called from any step but Review.
	ErrNotInReview = errors.New("flow: submit is only valid from the review step")

	// ErrAtFirstStep is returned by Back from the contact step.
	ErrAtFirstStep = errors.New("flow: already at the first step")

	// ErrConfirmed is returned by any mutation after the flow reached its
	// terminal state.
	ErrConfirmed = errors.New("flow: booking already confirmed, draft is immutable")
)

// ValidationError reports the first missing or malformed field of the current
// step. It never propagates past the step boundary: Next keeps the flow in
// place and the caller surfaces the field inline.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow: invalid field %s: %s", e.Field, e.Reason)
}

// BookingPersistenceError wraps a failed booking-store write. The draft stays
// in Review and remains editable for a user-initiated retry.
type BookingPersistenceError struct {
	Err error
}

func (e *BookingPersistenceError) Error() string {
	return fmt.Sprintf("flow: booking could not be saved: %v", e.Err)
}

func (e *BookingPersistenceError) Unwrap() error {
	return e.Err
}
