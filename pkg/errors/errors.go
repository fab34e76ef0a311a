// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings to enable reliable checks with
// errors.Is / errors.As and to carry minimal context about the failure.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Use cases return exactly one kind per error so
// callers (HTTP layer, admin tooling) can branch without string matching.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindWorkshopFull          Kind = "workshop_full"
	KindDuplicateChildBooking Kind = "duplicate_child_booking"
	KindAlreadyCancelled      Kind = "already_cancelled"
	KindUnauthorized          Kind = "unauthorized"
	KindValidation            Kind = "validation"
	KindCommit                Kind = "commit_conflict"
	KindPartialFailure        Kind = "partial_failure"
	KindDB                    Kind = "db"
)

// Error is the single structured error type. Msg is safe to show to
// guardians; Op and Err are for logs and operational triage.
type Error struct {
	Kind Kind
	Op   string // where it happened (package.Function)
	Msg  string // human friendly message (no PII)
	Err  error  // underlying cause (optional)
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Msg)
}

func (e *Error) Unwrap() error     { return e.Err }
func (e *Error) Operation() string { return e.Op }
func (e *Error) Message() string   { return e.Msg }
func (e *Error) Context() map[string]any {
	return map[string]any{"kind": string(e.Kind), "op": e.Op, "msg": e.Msg}
}

// Is lets errors.Is(err, &Error{Kind: KindNotFound}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

func New(kind Kind, op, msg string, err error) error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

func NewNotFound(op, msg string) error { return &Error{Kind: KindNotFound, Op: op, Msg: msg} }

func NewWorkshopFull(op, msg string) error {
	return &Error{Kind: KindWorkshopFull, Op: op, Msg: msg}
}

func NewDuplicateChild(op, msg string) error {
	return &Error{Kind: KindDuplicateChildBooking, Op: op, Msg: msg}
}

func NewAlreadyCancelled(op, msg string) error {
	return &Error{Kind: KindAlreadyCancelled, Op: op, Msg: msg}
}

func NewUnauthorized(op, msg string) error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: msg}
}

func NewValidation(op, msg string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg, Err: err}
}

func NewPartialFailure(op, msg string) error {
	return &Error{Kind: KindPartialFailure, Op: op, Msg: msg}
}

func NewCommit(op, msg string, err error) error {
	return &Error{Kind: KindCommit, Op: op, Msg: msg, Err: err}
}

func NewDB(op, msg string, err error) error {
	return &Error{Kind: KindDB, Op: op, Msg: msg, Err: err}
}

// KindOf extracts the kind from any error in the chain, or "" when the error
// is not one of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool { return KindOf(err) == kind }
