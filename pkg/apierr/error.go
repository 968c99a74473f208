package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Error is an API error with a stable code.
type Error struct {
	Status  int    // HTTP status code
	Code    string // Machine-readable code, e.g. "TENANT_NOT_FOUND"
	Message string // printf-style format, doubles as the translation key
	Args    []any  // Format arguments for Message
	Err     error  // Underlying cause, never exposed to clients
}

// New creates an error sentinel.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Args) > 0 {
		msg = fmt.Sprintf(e.Message, e.Args...)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of the error with message arguments set.
func (e *Error) With(args ...any) *Error {
	cp := *e
	cp.Args = slices.Clone(args)
	return &cp
}

// Wrap returns a copy of the error carrying err as its cause.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// ErrInternal is used for errors that are not *Error.
var ErrInternal = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")

// From converts any error into an *Error. Non-API errors become ErrInternal.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal.Wrap(err)
}

// IsServerError reports whether err maps to a 5xx response.
func IsServerError(err error) bool {
	return From(err).Status >= http.StatusInternalServerError
}
