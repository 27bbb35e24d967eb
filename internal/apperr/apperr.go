// Package apperr classifies service-layer failures so the transport layer
// can map them to protocol responses without string matching.
package apperr

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure classes the services can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConstraint
	KindValidation
	KindAuth
	KindStorage
)

// Error carries a failure kind alongside the message. Field is set only for
// constraint violations and names the colliding column.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports an absent record. Records owned by someone else are
// reported with the same kind so callers cannot probe for existence.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Constraint reports a uniqueness breach on the named field.
func Constraint(field, format string, args ...any) *Error {
	return &Error{Kind: KindConstraint, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// Validation reports input rejected before any store mutation.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// Auth reports a credential or token failure. Callers must use a uniform
// message for all auth failure causes.
func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Msg: msg}
}

// Storage wraps an unreachable or misbehaving backing store.
func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Msg: "storage unavailable", Err: err}
}

// KindOf extracts the kind from err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldOf returns the colliding field of a constraint error, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConstraint(err error) bool { return KindOf(err) == KindConstraint }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsAuth(err error) bool       { return KindOf(err) == KindAuth }
func IsStorage(err error) bool    { return KindOf(err) == KindStorage }
