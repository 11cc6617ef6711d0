package session

import "errors"

// Outcome errors produced while dispatching a command. They never leave the
// package as Go errors; Handle turns them into protocol responses.
var (
	ErrAuthRequired   = errors.New("session: authentication required")
	ErrInvalidToken   = errors.New("session: invalid token")
	ErrDeviceNotFound = errors.New("session: device not found")
	ErrInternal       = errors.New("session: internal error")
)

// msgInternal is the client-facing text for ErrInternal.
const msgInternal = "Internal error"
