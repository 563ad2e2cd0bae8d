package apperr

import (
	"errors"
	"fmt"
)

// Stable numeric error codes. External consumers map these codes to display
// text, so existing values must never be renumbered. New codes are appended.
const (
	CodeStorageUnavailable = 1001
	CodeUpstreamError      = 1002
	CodeInvalidInput       = 1003
	CodeNotFound           = 1004
	CodeStateConflict      = 1005
	CodeInteractionCheck   = 1006
)

// Error carries a stable code, a human-readable message and an optional cause.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without a wrapped cause.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an Error around a cause.
func Wrap(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func StorageUnavailable(message string, err error) *Error {
	return Wrap(CodeStorageUnavailable, message, err)
}

func Upstream(message string, err error) *Error {
	return Wrap(CodeUpstreamError, message, err)
}

func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func StateConflict(message string) *Error {
	return New(CodeStateConflict, message)
}

func InteractionCheck(message string, err error) *Error {
	return Wrap(CodeInteractionCheck, message, err)
}

// CodeOf extracts the stable code from err, or 0 when err carries none.
func CodeOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return 0
}

// HasCode reports whether err carries the given stable code.
func HasCode(err error, code int) bool {
	return CodeOf(err) == code
}
