// Package errors provides structured error types for deskgrid.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Layout operations report capacity and identity problems with dedicated
// codes so callers can tell a rejected request from a broken store:
//   - INVALID_*: Input or configuration validation failures
//   - ITEM_TOO_LARGE_FOR_GRID: an item's span exceeds the grid
//   - DUPLICATE_ITEM, NOT_FOUND, PAGE_NOT_EMPTY: rejected layout edits
//   - STORE_FAILURE, STALE_STORE: durable store problems
//
// # Usage
//
//	err := errors.New(errors.ErrCodeItemTooLarge, "item %s spans %dx%d", key, w, h)
//	if errors.Is(err, errors.ErrCodeItemTooLarge) {
//	    // Reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreFailure, origErr, "insert row for %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidKey    Code = "INVALID_KEY"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Layout errors
	ErrCodeItemTooLarge  Code = "ITEM_TOO_LARGE_FOR_GRID"
	ErrCodeDuplicateItem Code = "DUPLICATE_ITEM"
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodePageNotEmpty  Code = "PAGE_NOT_EMPTY"

	// Store errors
	ErrCodeStoreFailure Code = "STORE_FAILURE"
	ErrCodeStaleStore   Code = "STALE_STORE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
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
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// TooLargeError reports an item whose span cannot fit the grid at all.
// It carries the offending dimensions so callers can render a precise hint.
type TooLargeError struct {
	Key           string
	Width, Height int
	Rows, Columns int
}

// Error implements the error interface.
func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s: item %q spans %dx%d but the grid is %d rows by %d columns",
		ErrCodeItemTooLarge, e.Key, e.Width, e.Height, e.Rows, e.Columns)
}

// Code returns the error code for this error type.
func (e *TooLargeError) Code() Code {
	return ErrCodeItemTooLarge
}

// IsTooLarge reports whether err is, or wraps, a capacity violation.
func IsTooLarge(err error) bool {
	var tl *TooLargeError
	if errors.As(err, &tl) {
		return true
	}
	return Is(err, ErrCodeItemTooLarge)
}
