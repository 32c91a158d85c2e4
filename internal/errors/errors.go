package errors

import "fmt"

// ErrorCode represents a handoff error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrUniqueConstraint ErrorCode = "UNIQUE_CONSTRAINT" // 409
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED" // 422
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// HandoffError represents a structured error with code, status, and details.
type HandoffError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HandoffError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for malformed request bodies or parameters.
func NewInvalidRequest(msg string) *HandoffError {
	return &HandoffError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a session cannot be found.
func NewNotFound(sessionID string) *HandoffError {
	return &HandoffError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("session not found: %s", sessionID),
		Details: map[string]any{"session_id": sessionID},
	}
}

// NewValidationFailed creates a 422 error naming the offending field.
func NewValidationFailed(field, msg string) *HandoffError {
	return &HandoffError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"field": field},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HandoffError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HandoffError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a HandoffError with the given code.
func Is(err error, code ErrorCode) bool {
	if hErr, ok := err.(*HandoffError); ok {
		return hErr.Code == code
	}
	return false
}
