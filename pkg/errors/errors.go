// Package errors provides structured error types for the cornerpin application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - DEGENERATE_GEOMETRY: corner points admit no projective transform
//   - NOT_FOUND: No stored points for a key
//   - STORAGE_*: Persistence backend failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidKey, "invalid key: %s", key)
//	if errors.Is(err, errors.ErrCodeInvalidKey) {
//	    // Handle validation error
//	}
//
//	// Map solver and storage errors onto codes
//	code := errors.GetCode(errors.Classify(err))
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/matzehuels/cornerpin/pkg/mapper"
	"github.com/matzehuels/cornerpin/pkg/projective"
	"github.com/matzehuels/cornerpin/pkg/store"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidKey        Code = "INVALID_KEY"
	ErrCodeInvalidPoints     Code = "INVALID_POINTS"
	ErrCodeInvalidDimensions Code = "INVALID_DIMENSIONS"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"

	// Geometry errors
	ErrCodeDegenerateGeometry Code = "DEGENERATE_GEOMETRY"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeHandleNotFound Code = "HANDLE_NOT_FOUND"

	// Storage errors
	ErrCodeStorage            Code = "STORAGE_ERROR"
	ErrCodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
	ErrCodeTimeout            Code = "TIMEOUT"

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
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// Classify returns err as an *Error, deriving the code from the solver and
// storage sentinels when err is not already structured. Nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, projective.ErrDegenerateGeometry):
		return Wrap(ErrCodeDegenerateGeometry, err, "corner points do not define a perspective transform")
	case errors.Is(err, projective.ErrInvalidInput):
		return Wrap(ErrCodeInvalidPoints, err, "invalid corner points")
	case errors.Is(err, mapper.ErrUnknownHandle):
		return Wrap(ErrCodeHandleNotFound, err, "no such handle")
	case errors.Is(err, mapper.ErrUnknownItem):
		return Wrap(ErrCodeNotFound, err, "element is not attached")
	case errors.Is(err, mapper.ErrInvalidElement):
		return Wrap(ErrCodeInvalidDimensions, err, "element cannot be mapped")
	case errors.Is(err, store.ErrInvalidKey):
		return Wrap(ErrCodeInvalidKey, err, "invalid key")
	case errors.Is(err, store.ErrNotFound):
		return Wrap(ErrCodeNotFound, err, "no stored points")
	case errors.Is(err, store.ErrNetwork):
		return Wrap(ErrCodeStorageUnavailable, err, "storage backend unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(ErrCodeTimeout, err, "operation timed out")
	default:
		return Wrap(ErrCodeInternal, err, "internal error")
	}
}

// HTTPStatus returns the HTTP status code for an error code.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidKey, ErrCodeInvalidPoints,
		ErrCodeInvalidDimensions, ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case ErrCodeDegenerateGeometry:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeHandleNotFound:
		return http.StatusNotFound
	case ErrCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
