// Package errors provides coded errors shared by the CLI and the HTTP server.
//
// A [Code] says what kind of failure happened. The server never shows an
// error's text to clients: it responds with [Code.Public] instead, so only
// the mod list failure is distinguishable from everything else.
//
//	err := errors.Wrap(errors.ErrCodeListUnavailable, cause, "load mod list")
//	if errors.Is(err, errors.ErrCodeListUnavailable) {
//	    // ...
//	}
//	http.Error(w, errors.GetCode(err).Public(), 500)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error kind.
type Code string

const (
	// Rejected input: bad flags, bad config, bad slugs.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidSlug   Code = "INVALID_SLUG"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// The mod list could not be fetched or decoded.
	ErrCodeListUnavailable Code = "LIST_UNAVAILABLE"

	// Anything without a more specific code.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Client-facing messages. Website code matches on these exact strings.
const (
	MessageListUnavailable = "Failed to fetch mod list from GitHub."
	MessageUnexpected      = "An unexpected error occurred during data fetching."
)

// Public returns the message shown to HTTP clients for c.
func (c Code) Public() string {
	if c == ErrCodeListUnavailable {
		return MessageListUnavailable
	}
	return MessageUnexpected
}

// Error carries a Code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of a coded error without its code, or
// err.Error() for other errors. Used for terminal output, never for HTTP.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
