package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeBadRequest indicates a malformed or out-of-range argument
	ErrorTypeBadRequest ErrorType = "BAD_REQUEST"
	// ErrorTypeNotFound indicates a row the operation needs does not exist
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeConflict indicates a duplicate or a violated constraint
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeInternal indicates a driver, connection or I/O failure
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(errorType ErrorType, message string) error {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

// Wrap wraps an error with an application error
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// BadRequest creates a bad request error
func BadRequest(format string, args ...interface{}) error {
	return New(ErrorTypeBadRequest, fmt.Sprintf(format, args...))
}

// NotFound creates a not found error
func NotFound(format string, args ...interface{}) error {
	return New(ErrorTypeNotFound, fmt.Sprintf(format, args...))
}

// Conflict creates a conflict error
func Conflict(format string, args ...interface{}) error {
	return New(ErrorTypeConflict, fmt.Sprintf(format, args...))
}

// Internal wraps err as an internal error
func Internal(message string, err error) error {
	return Wrap(ErrorTypeInternal, message, err)
}

// TypeOf reports the type of the first AppError in err's chain.
// Errors that carry no AppError are internal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// IsBadRequest checks if an error is a bad request error
func IsBadRequest(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeBadRequest
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeConflict
}

// Classify turns a raw driver error into an AppError. Constraint
// violations become conflicts; everything else is internal.
func Classify(message string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if IsDuplicateError(err) || IsConstraintError(err) {
		return Wrap(ErrorTypeConflict, message, err)
	}
	return Wrap(ErrorTypeInternal, message, err)
}

// IsDuplicateError checks if an error is a duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry")
}

// IsConstraintError checks if an error is a foreign key or check violation
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint") ||
		strings.Contains(errStr, "foreign key constraint") ||
		strings.Contains(errStr, "CHECK constraint") ||
		strings.Contains(errStr, "Check constraint") ||
		strings.Contains(errStr, "check constraint")
}
