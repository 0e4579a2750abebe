// Package errors defines the typed error used across the order engine. Each
// error carries a Code that decides its HTTP status and whether the message
// and details may be shown to clients.
package errors

import (
	stdErrors "errors"
	"fmt"
)

type Error struct {
	code      Code
	message   string
	details   any
	retryable *bool
	cause     error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code and message to err. A nil err yields a plain New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func Validation(message string) *Error { return New(CodeValidation, message) }

// Conflict reports a business rule refusal such as an occupied table or short
// stock. Unlike lock contention these do not resolve by retrying.
func Conflict(message string) *Error { return New(CodeConflict, message).WithRetryable(false) }

// NotFound reports a missing entity, named in the message and details.
func NotFound(resource string) *Error {
	return New(CodeNotFound, resource+" not found").WithDetails(map[string]string{"resource": resource})
}

func Internal(err error, message string) *Error { return Wrap(CodeInternal, err, message) }

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

// Retryable reports whether repeating the same request may succeed. It
// defaults to the code's metadata.
func (e *Error) Retryable() bool {
	if e != nil && e.retryable != nil {
		return *e.retryable
	}
	return MetadataFor(e.Code()).Retryable
}

func (e *Error) WithRetryable(retryable bool) *Error {
	if e != nil {
		e.retryable = &retryable
	}
	return e
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	default:
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost typed error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if err != nil && stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the provided code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// EnsureTyped returns err untouched when it is already typed, otherwise wraps
// it as an internal failure with the supplied message.
func EnsureTyped(err error, message string) error {
	if err == nil || As(err) != nil {
		return err
	}
	return Internal(err, message)
}
