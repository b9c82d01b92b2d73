package domain

import "errors"

var (
	// ErrNotFound is returned when an operation, phase or alert ID does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks a transition the current state does not allow.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput marks caller-supplied values that fail validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence wraps failures writing back to the store.
	ErrPersistence = errors.New("persistence failure")
	// ErrConfiguration marks threshold tables or settings that fail validation at load.
	ErrConfiguration = errors.New("configuration error")
)
