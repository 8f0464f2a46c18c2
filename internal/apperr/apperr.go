package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the transport layer can map it to a response
// without inspecting message text.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthRejected
	KindBadRequest
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindAuthRejected:
		return "auth_rejected"
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is a kind-carrying error. Domain and validation failures are raised
// with an explicit kind at the point of detection; anything else surfaces as
// KindInternal and is never shown to the client verbatim.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Message is the client-safe description.
func (e *Error) Message() string { return e.msg }

func New(kind Kind, msg string) error {
	return &Error{kind: kind, msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap keeps the cause for logs while pinning the outward kind and message.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Internal normalizes an infrastructure failure. The cause stays attached for
// logging; the client only ever sees the generic message.
func Internal(err error) error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{kind: KindInternal, msg: "internal error", err: err}
}

// KindOf extracts the kind, defaulting to KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
