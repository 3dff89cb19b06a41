// Package errors provides custom error types and error handling utilities.
package errors

import (
	"fmt"
)

// Error codes.
const (
	// Input errors.
	CodeValidation     = "VALIDATION_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeMalformedInput = "MALFORMED_INPUT"
	CodeEmptyCandidate = "EMPTY_CANDIDATE_SET"

	// Infrastructure errors.
	CodeIO          = "IO_ERROR"
	CodeCache       = "CACHE_ERROR"
	CodeBus         = "BUS_ERROR"
	CodeTimeout     = "TIMEOUT"
	CodeUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternal    = "INTERNAL_ERROR"
)

// AppError represents an application error with code and details.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error.
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Convenience constructors.

// ValidationError creates a validation error.
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFoundError creates a not found error.
func NotFoundError(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

// MalformedInputError creates a malformed input error for a source row.
// Malformed rows halt the run; they are never silently scored.
func MalformedInputError(message string) *AppError {
	return New(CodeMalformedInput, message)
}

// EmptyCandidateError creates an error for a query with no candidate passages.
func EmptyCandidateError(queryID string) *AppError {
	return New(CodeEmptyCandidate, fmt.Sprintf("query %s has no candidate passages", queryID)).
		WithDetail("query_id", queryID)
}

// IOError creates an I/O error.
func IOError(message string, err error) *AppError {
	return Wrap(CodeIO, message, err)
}

// CacheError creates a cache error.
func CacheError(message string, err error) *AppError {
	return Wrap(CodeCache, message, err)
}

// BusError creates an event bus error.
func BusError(message string, err error) *AppError {
	return Wrap(CodeBus, message, err)
}

// InternalError creates an internal error.
func InternalError(message string, err error) *AppError {
	return Wrap(CodeInternal, message, err)
}

// TimeoutError creates a timeout error for a specific operation.
func TimeoutError(operation string) *AppError {
	message := "operation timed out"
	if operation != "" {
		message = fmt.Sprintf("%s timed out", operation)
	}
	return New(CodeTimeout, message)
}

// ServiceUnavailableError creates a service unavailable error.
func ServiceUnavailableError(service string) *AppError {
	message := "service unavailable"
	if service != "" {
		message = fmt.Sprintf("%s is unavailable", service)
	}
	return New(CodeUnavailable, message)
}

// IsNotFound checks if error is a not found error.
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsValidation checks if error is a validation error.
func IsValidation(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeValidation
	}
	return false
}

// IsMalformedInput checks if error is a malformed input error.
func IsMalformedInput(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeMalformedInput
	}
	return false
}

// IsEmptyCandidate checks if error is an empty candidate set error.
func IsEmptyCandidate(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == CodeEmptyCandidate
	}
	return false
}
