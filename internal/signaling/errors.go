package signaling

import "errors"

var (
	// ErrUnreachable is returned when the addressed session is not registered.
	// The event is dropped; the sender's connection is unaffected.
	ErrUnreachable = errors.New("target session not connected")
	// ErrSessionNotFound is returned when the sending session is no longer registered.
	ErrSessionNotFound = errors.New("session not found")
)
