// Package serrors implements semantic errors: a sentinel Kind paired with an
// optional cause and message. Callers branch on the kind with errors.Is while
// the cause chain stays inspectable.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a semantic error category created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind with the given name.
func NewKind(name string) Kind { return kind{s: name} }

// Kinds shared by the scanning engine, its candidate sources and the CLI.
var (
	// ErrInvalidTarget means the scan target is missing or not a valid hostname.
	ErrInvalidTarget = NewKind("INVALID_TARGET")
	// ErrNoCandidates means a scan was requested over an empty candidate set.
	ErrNoCandidates = NewKind("NO_CANDIDATES")
	// ErrSourceUnavailable means a candidate source could not supply anything at all.
	ErrSourceUnavailable = NewKind("SOURCE_UNAVAILABLE")
	// ErrResolverUnusable means no name resolver could be constructed for the scan.
	ErrResolverUnusable = NewKind("RESOLVER_UNUSABLE")
	// ErrDNSFailure means a hostname did not resolve to any usable address.
	ErrDNSFailure = NewKind("DNS_FAILURE")
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrRateLimited indicates an upstream refused the request with a rate limit.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrBadRequest indicates invalid input.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrUnavailable indicates an upstream is temporarily unavailable.
	ErrUnavailable = NewKind("UNAVAILABLE")
)

// Error carries a kind, an optional wrapped cause and an optional message.
//
// errors.Is and errors.As match either the kind or anything in the cause chain.
// The string form is "<msg>: <cause>", "<msg>", "<cause>" or the kind name,
// depending on which parts are set.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly constructs an error carrying only its kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first, then against the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As assigns the kind or a member of the cause chain to target.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the semantic kind, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, which may be nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the first semantic kind found in err's chain, or nil.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.kind
	}

	return nil
}
