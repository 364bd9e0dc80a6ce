package model

import "errors"

// Store-level sentinel errors. The gateway package wraps these into typed
// results; errors.Is keeps working across that boundary because every wrap
// uses fmt.Errorf("...: %w", ...).
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid")
	ErrCorrupt       = errors.New("corrupt")
	ErrIO            = errors.New("io error")
	ErrTimeout       = errors.New("timeout")
	ErrConflict      = errors.New("conflict")
)
