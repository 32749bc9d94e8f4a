package domain

import "errors"

// Sentinel errors shared by services and the HTTP layer. Controllers map them
// to status codes with errors.Is; anything else is an internal fault.
var (
	// ErrInvalidInput is returned when a request is malformed (bad date, missing field, ...).
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no valid principal is available.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSlotUnavailable is returned when no unbooked slot matches a reservation.
	// It covers a slot that never existed, one claimed by a concurrent request and
	// stale client-side availability. Clients should refresh and retry.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrSlotBooked is returned when trying to delete a slot that already has a meeting.
	ErrSlotBooked = errors.New("slot already booked")

	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
