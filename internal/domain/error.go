package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownPosition = errors.New("unknown position")
	ErrUnknownCity     = errors.New("unknown city")
)

// ErrBusy is returned when a lock-guarded operation is already running elsewhere.
var ErrBusy = errors.New("resource is busy")
