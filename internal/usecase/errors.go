package usecase

import "errors"

// Sentinel errors the HTTP layer maps to status codes.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrPackageNotFound    = errors.New("package not found")
	ErrPackageUnavailable = errors.New("package is not available for booking")
	ErrFlowNotFound       = errors.New("booking flow not found or expired")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNotOwner           = errors.New("resource belongs to another account")
	ErrInvalidTransition  = errors.New("transition not allowed from current state")
	ErrInvalidPrice       = errors.New("price must be a non-negative decimal")
)
