package gateway

import (
	"errors"

	"github.com/corevault/corevault/internal/model"
)

// Kind is the nine-way error taxonomy every gateway operation's failures
// are classified into.
type Kind string

const (
	KindInvalidInput  Kind = "InvalidInput"
	KindNotFound      Kind = "NotFound"
	KindAlreadyExists Kind = "AlreadyExists"
	KindConflict      Kind = "Conflict"
	KindCorrupt       Kind = "Corrupt"
	KindIOError       Kind = "IOError"
	KindTimeout       Kind = "Timeout"
	KindDegraded      Kind = "Degraded"
	KindInternal      Kind = "Internal"
)

// Error is the typed error that ever crosses the gateway boundary — never
// a bare error. Wraps the underlying error so errors.Is/errors.As still
// work against it.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// classify maps a Store/Linker error onto its gateway Kind via the model
// sentinel it wraps, falling back to Internal for anything unrecognized.
func classify(context string, err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotFound):
		return newError(KindNotFound, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrAlreadyExists):
		return newError(KindAlreadyExists, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrInvalid):
		return newError(KindInvalidInput, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrInvalidTransition):
		return newError(KindInvalidInput, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrCorrupt):
		return newError(KindCorrupt, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrIO):
		return newError(KindIOError, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrTimeout):
		return newError(KindTimeout, context+": "+err.Error(), err)
	case errors.Is(err, model.ErrConflict):
		return newError(KindConflict, context+": "+err.Error(), err)
	default:
		return newError(KindInternal, context+": "+err.Error(), err)
	}
}

func invalidInput(message string) *Error {
	return newError(KindInvalidInput, message, nil)
}
