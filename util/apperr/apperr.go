// util/apperr/apperr.go
// Package apperr carries the engine's error taxonomy: every business failure
// has a stable kind that controllers map to an HTTP status.
package apperr

import "errors"

type Kind string

const (
	Validation   Kind = "VALIDATION"   // malformed input, rejected before any state change
	Capacity     Kind = "NO_COPIES"    // no available copies; rejected, not queued
	State        Kind = "INVALID_STATE" // operation invalid for the current lifecycle state
	Conflict     Kind = "CONFLICT"     // deletion blocked by a referential constraint
	NotFound     Kind = "NOT_FOUND"    // unknown id
	Unauthorized Kind = "UNAUTHORIZED" // caller lacks the required role or credentials
)

type Error struct {
	K   Kind
	Msg string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Kind() Kind    { return e.K }

func New(k Kind, msg string) error { return &Error{K: k, Msg: msg} }

// KindOf extracts the kind, or "" for plain errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.K
	}
	return ""
}

func Is(err error, k Kind) bool { return KindOf(err) == k }
