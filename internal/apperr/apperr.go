// Package apperr defines the typed errors returned by the inventory core.
// Every error carries a Kind that callers branch on and a human-readable
// message; translating kinds into user text or status codes happens outside
// the core.
package apperr

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind string

// Error kinds.
const (
	KindValidation             Kind = "validation"
	KindAuthorization          Kind = "authorization"
	KindNotFound               Kind = "not_found"
	KindInvalidStateTransition Kind = "invalid_state_transition"
	KindInsufficientInventory  Kind = "insufficient_inventory"
	KindTransient              Kind = "transient"
)

// Error is a typed core error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.ErrNotFound)
// works regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Retryable reports whether the caller may retry the same request unmodified.
func (e *Error) Retryable() bool { return e.Kind == KindTransient }

// Kind sentinels for errors.Is.
var (
	ErrValidation             = &Error{Kind: KindValidation}
	ErrAuthorization          = &Error{Kind: KindAuthorization}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInsufficientInventory  = &Error{Kind: KindInsufficientInventory}
	ErrTransient              = &Error{Kind: KindTransient}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation returns a ValidationError.
func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

// Unauthorized returns an AuthorizationError.
func Unauthorized(format string, args ...any) *Error {
	return newf(KindAuthorization, format, args...)
}

// NotFound returns a NotFound error.
func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

// InvalidTransition returns an InvalidStateTransition error.
func InvalidTransition(format string, args ...any) *Error {
	return newf(KindInvalidStateTransition, format, args...)
}

// Insufficient returns an InsufficientInventory error.
func Insufficient(format string, args ...any) *Error {
	return newf(KindInsufficientInventory, format, args...)
}

// Transient wraps a persistence or timeout failure.
func Transient(message string, err error) *Error {
	return &Error{Kind: KindTransient, Message: message, Err: err}
}

// KindOf returns the kind of err. Untyped errors are reported as transient,
// since they can only originate from the persistence collaborator.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// Wrap passes typed errors through and turns anything else (context
// cancellation, driver errors) into a Transient error.
func Wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Transient(message+": timed out", err)
	}
	return Transient(message, err)
}
