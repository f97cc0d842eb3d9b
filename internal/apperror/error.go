package apperror

import (
	"errors"
	"fmt"
)

// Error is a domain error carrying a stable code alongside a message that is
// safe to return to clients.
type Error struct {
	Code    Code
	Message string
	Err     error // wrapped cause, never serialized to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so callers can use errors.Is with sentinel-style targets.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and client-safe message to an underlying error.
// If err is already an *Error its code wins and only the cause chain grows.
func Wrap(err error, code Code, msg string) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return &Error{Code: ae.Code, Message: ae.Message, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf extracts the code from an error chain, defaulting to INTERNAL_ERROR.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternalError
}

// MessageOf extracts the client-safe message from an error chain. Errors that
// are not *Error get a generic message so internals never leak.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "internal server error"
}
