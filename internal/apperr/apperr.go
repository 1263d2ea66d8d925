// Package apperr defines the error kinds business operations return. The
// handler layer maps kinds to HTTP status codes and the response envelope;
// services never panic or surface raw store errors to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a business error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAccessDenied
	KindQuotaExceeded
	KindConflict
	KindAuthentication
)

// Error is a business error with a caller-safe message. Current and Max are
// populated only for quota errors.
type Error struct {
	Kind    Kind
	Message string
	Current int
	Max     int
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation reports malformed input.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports an absent entity. Entities outside the caller's tenant are
// reported identically so existence does not leak across tenants.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// AccessDenied reports an access-control denial.
func AccessDenied(reason string) *Error {
	return &Error{Kind: KindAccessDenied, Message: reason}
}

// QuotaExceeded reports a subscription-limit denial with the observed counts.
func QuotaExceeded(message string, current, max int) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: message, Current: current, Max: max}
}

// Conflict reports a duplicate name, domain or email.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Authentication reports invalid credentials or an inactive account.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Internal wraps an unexpected failure. The message is caller-safe; the cause
// is for logs only.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts an *Error from err if present.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
