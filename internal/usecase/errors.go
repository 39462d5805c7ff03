package usecase

import "errors"

// Sentinel errors for the failure taxonomy. Services wrap these with
// context via fmt.Errorf("...: %w", ...); handlers map them to HTTP status
// codes with errors.Is.
var (
	// ErrNotFound means an entity id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means a role or ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation means a request field was malformed or out of range.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition means the requested status change is not an
	// edge of the booking state machine for the caller's role.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrConflict means the operation lost to a concurrent write or the
	// entity state makes it ineligible (duplicate rating, refund or
	// cancel on a terminal booking). Retryable where state allows.
	ErrConflict = errors.New("conflict")
	// ErrPaymentDeclined means the gateway processed the charge and
	// declined it.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrPaymentGateway means the payment collaborator itself failed.
	ErrPaymentGateway = errors.New("payment gateway failure")
)
