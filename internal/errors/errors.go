// Package errors defines the structured application error type and the error
// code taxonomy for the lifecycle engine. Guard failures are returned as
// typed results, never swallowed; the API layer maps codes to user-facing
// responses.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeUnauthorized indicates the acting user may not perform the operation.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeInvalidTransition indicates the requested status change is not in the transition table.
	ErrCodeInvalidTransition ErrorCode = "invalid_transition"
	// ErrCodeAlreadyApplied indicates the worker already has a live application for the job.
	ErrCodeAlreadyApplied ErrorCode = "already_applied"
	// ErrCodeAlreadyDecided indicates the application is no longer pending.
	ErrCodeAlreadyDecided ErrorCode = "already_decided"
	// ErrCodeSelfApplication indicates a poster tried to apply to their own job.
	ErrCodeSelfApplication ErrorCode = "self_application"
	// ErrCodeJobNotOpen indicates the job stopped accepting applications.
	ErrCodeJobNotOpen ErrorCode = "job_not_open"
	// ErrCodeLocationVerificationFailed indicates the geofence gate rejected the worker's location.
	ErrCodeLocationVerificationFailed ErrorCode = "location_verification_failed"
	// ErrCodeLocationUnavailable indicates the client could not produce a location sample.
	ErrCodeLocationUnavailable ErrorCode = "location_unavailable"
	// ErrCodeMissingLocation indicates the job has no usable location anchor.
	ErrCodeMissingLocation ErrorCode = "missing_location"
	// ErrCodeNotInProgress indicates the operation needs an in-progress job.
	ErrCodeNotInProgress ErrorCode = "not_in_progress"
	// ErrCodeNoPendingRequest indicates no completion request exists to approve.
	ErrCodeNoPendingRequest ErrorCode = "no_pending_request"
	// ErrCodeInvalidRating indicates a rating outside the 1-5 range.
	ErrCodeInvalidRating ErrorCode = "invalid_rating"
	// ErrCodeTasksIncomplete indicates direct completion was refused because tasks remain.
	ErrCodeTasksIncomplete ErrorCode = "tasks_incomplete"
	// ErrCodeConflict indicates a version conflict (or duplicate); re-read and retry.
	ErrCodeConflict ErrorCode = "conflict"

	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
	// Details carries a structured payload for client display (optional,
	// e.g. the VerificationResult behind a failed location gate)
	Details any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a new Unauthorized error.
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// Unauthorizedf creates a new Unauthorized error with formatted message.
func Unauthorizedf(format string, args ...any) *AppError {
	return Newf(ErrCodeUnauthorized, format, args...)
}

// InvalidTransitionf creates a new InvalidTransition error with formatted message.
func InvalidTransitionf(format string, args ...any) *AppError {
	return Newf(ErrCodeInvalidTransition, format, args...)
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// Conflictf creates a new Conflict error with formatted message.
func Conflictf(format string, args ...any) *AppError {
	return Newf(ErrCodeConflict, format, args...)
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return Newf(ErrCodeNotFound, format, args...)
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// Internal creates a new Internal error wrapping a cause.
func Internal(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Cause: cause}
}

// WithDetails attaches a structured payload to the error and returns it.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// CodeOf extracts the ErrorCode from an error chain. Errors that are not
// AppError classify as internal.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether the error chain contains an AppError with the code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// DetailsOf extracts the structured details payload from an error chain, if any.
func DetailsOf(err error) any {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Details
	}
	return nil
}
