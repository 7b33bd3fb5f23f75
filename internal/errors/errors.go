// Package errors defines the failure taxonomy of a report run.
//
// SourceUnavailable and SchemaMismatch are fatal and abort the run.
// UnresolvedJoinKey and MissingMeasurement describe rows that are excluded
// from an output; they are counted and logged, never returned from the
// pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Type identifies the category of error
type Type string

const (
	// TypeSourceUnavailable indicates an input could not be read
	TypeSourceUnavailable Type = "SOURCE_UNAVAILABLE"

	// TypeSchemaMismatch indicates a required column is absent
	TypeSchemaMismatch Type = "SCHEMA_MISMATCH"

	// TypeUnresolvedJoinKey indicates a state identifier with no reference match
	TypeUnresolvedJoinKey Type = "UNRESOLVED_JOIN_KEY"

	// TypeMissingMeasurement indicates a null or suppressed count
	TypeMissingMeasurement Type = "MISSING_MEASUREMENT"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInput indicates an invalid argument
	TypeInput Type = "INPUT_ERROR"

	// TypeOutput indicates a rendered report could not be written
	TypeOutput Type = "OUTPUT_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{Type: errType, Message: message, Cause: cause}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// SourceUnavailable creates a source read error
func SourceUnavailable(source string, cause error) *Error {
	return Wrap(TypeSourceUnavailable, fmt.Sprintf("cannot read source %s", source), cause).
		WithContext("source", source)
}

// SchemaMismatch creates a missing-column error
func SchemaMismatch(source string, missing []string) *Error {
	return Newf(TypeSchemaMismatch, "source %s is missing required columns %v", source, missing).
		WithContext("source", source).
		WithContext("columns", missing)
}

// UnresolvedJoinKey creates a join-key miss
func UnresolvedJoinKey(kind, key string) *Error {
	return Newf(TypeUnresolvedJoinKey, "no state matches %s %q", kind, key)
}

// MissingMeasurement creates a null-measurement error
func MissingMeasurement(field string) *Error {
	return Newf(TypeMissingMeasurement, "%s is null or suppressed", field)
}

// Config creates a configuration error
func Config(message string, cause error) *Error {
	return Wrap(TypeConfig, message, cause)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Output creates an output error
func Output(message string, cause error) *Error {
	return Wrap(TypeOutput, message, cause)
}
