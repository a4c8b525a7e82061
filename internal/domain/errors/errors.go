package errors

import "errors"

var (
	ErrAlreadyExists     = errors.New("already exists")
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidRoom       = errors.New("invalid room")
	ErrInvalidEvent      = errors.New("invalid event")
	ErrForbidden         = errors.New("forbidden")

	// Cart conflict protocol.
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidItem      = errors.New("invalid cart item")
	ErrConflictPending  = errors.New("restaurant conflict pending")
	ErrUnknownConflict  = errors.New("unknown restaurant conflict")
	ErrConflictResolved = errors.New("restaurant conflict already resolved")

	// Client session.
	ErrReconnectFailed = errors.New("reconnect failed")
	ErrSessionClosed   = errors.New("session closed")
	ErrNotConnected    = errors.New("session not connected")
)
