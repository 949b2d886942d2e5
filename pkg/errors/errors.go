// Package errors provides structured error types for plategen.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*, INCONSISTENT_*, DUPLICATE_*: configuration errors in the
//     experiment definition or request
//   - GEOMETRY: a fragment that cannot be placed on an empty plate
//   - NOT_FOUND: resource not found
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPlateSize, "invalid plate size %d", n)
//	if errors.IsConfiguration(err) {
//	    // surface errors.UserMessage(err) to the caller
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput            Code = "INVALID_INPUT"
	ErrCodeInvalidPlateSize        Code = "INVALID_PLATE_SIZE"
	ErrCodeInconsistentExperiments Code = "INCONSISTENT_EXPERIMENTS"
	ErrCodeDuplicateEntry          Code = "DUPLICATE_ENTRY"
	ErrCodeInvalidReplicates       Code = "INVALID_REPLICATES"
	ErrCodeInvalidPacker           Code = "INVALID_PACKER"
	ErrCodeInvalidFormat           Code = "INVALID_FORMAT"
	ErrCodeInvalidPath             Code = "INVALID_PATH"

	// Placement errors
	ErrCodeGeometry Code = "GEOMETRY"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// configurationCodes are the codes produced by malformed or inconsistent input.
var configurationCodes = map[Code]bool{
	ErrCodeInvalidInput:            true,
	ErrCodeInvalidPlateSize:        true,
	ErrCodeInconsistentExperiments: true,
	ErrCodeDuplicateEntry:          true,
	ErrCodeInvalidReplicates:       true,
	ErrCodeInvalidPacker:           true,
	ErrCodeInvalidFormat:           true,
	ErrCodeInvalidPath:             true,
}

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

// IsConfiguration reports whether err was caused by malformed or inconsistent
// input rather than by a failure inside plategen.
func IsConfiguration(err error) bool {
	return configurationCodes[GetCode(err)]
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
