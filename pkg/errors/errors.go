// Package errors provides structured error types for jengatower.
//
// Every package that crosses a user-facing boundary (dataset loading, the
// pipeline, caches, the HTTP server) returns *Error values so callers can
// branch on a machine-readable [Code] instead of matching strings.
//
// # Error Codes
//
// Codes are grouped by prefix:
//   - LOAD_* / EMPTY_*: dataset acquisition failures (fatal at startup)
//   - INVALID_*: input validation failures
//   - RECONFIG_*: reconfiguration state-machine refusals
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSortKey, "unknown metric %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidSortKey) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeLoadFailed, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Dataset acquisition errors
	ErrCodeLoadFailed   Code = "LOAD_FAILED"
	ErrCodeEmptyDataset Code = "EMPTY_DATASET"
	ErrCodeInvalidRow   Code = "INVALID_ROW"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSortKey Code = "INVALID_SORT_KEY"
	ErrCodeInvalidSource  Code = "INVALID_SOURCE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Lookup errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeBlockNotFound Code = "BLOCK_NOT_FOUND"

	// Engine state errors
	ErrCodeReconfigBusy Code = "RECONFIG_BUSY"
	ErrCodeDragRefused  Code = "DRAG_REFUSED"

	// Network and cache errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"
	ErrCodeCache   Code = "CACHE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
// The outermost *Error wins, matching how callers read wrapped failures.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Fatal reports whether err must halt initialization: no partial tower is
// built after a load failure or an empty dataset.
func Fatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeLoadFailed, ErrCodeEmptyDataset:
		return true
	}
	return false
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
