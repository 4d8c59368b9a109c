// Package errors provides error handling for wsgen.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	if err := writeOutput(path); err != nil {
//	    return errors.Wrapf(err, "failed to write %s", path)
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrTypeSurfaceDesync) {
//	    // regenerate the ambient declaration file
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	WithDetail   = crdb.WithDetail
	WithDetailf  = crdb.WithDetailf
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
	Join      = crdb.Join
)

// Sentinel errors shared across the generator.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates a requested unit, file or directory does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates malformed invocation arguments or configuration
	ErrInvalidRequest = New("invalid request")

	// ErrMalformedParent is returned by the strict hierarchy policy when a
	// declared parent name is not a plain identifier
	ErrMalformedParent = New("malformed parent class name")

	// ErrTypeSurfaceDesync means the ambient declaration file no longer contains
	// the delimited class-name block
	ErrTypeSurfaceDesync = New("type surface file desynchronized")

	// ErrMissingTestSource indicates a canonical test definition is absent
	ErrMissingTestSource = New("missing canonical test source")

	// ErrUnitFailed marks a unit whose generation failed
	ErrUnitFailed = New("unit generation failed")

	// ErrChildFailed indicates a fan-out worker process exited with an error
	ErrChildFailed = New("worker process failed")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrapf(ErrInvalidRequest, format, args...)
}
