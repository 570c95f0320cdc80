package errors

import "fmt"

// ErrorCode represents a Quill error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrDraftTooLarge  ErrorCode = "DRAFT_TOO_LARGE" // 413
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrPublishFailed  ErrorCode = "PUBLISH_FAILED"  // 502
)

// QuillError represents a structured error with code, status, and details.
type QuillError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *QuillError {
	return &QuillError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing draft or queue item.
func NewNotFound(identifier string) *QuillError {
	return &QuillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewConflict creates a 409 error for general conflicts.
func NewConflict(msg string) *QuillError {
	return &QuillError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewDraftTooLarge creates a 413 error when a post exceeds the weighted limit.
func NewDraftTooLarge(limit, actual int) *QuillError {
	return &QuillError{
		Code:    ErrDraftTooLarge,
		Status:  413,
		Message: fmt.Sprintf("post exceeds weighted limit: %d (max %d)", actual, limit),
		Details: map[string]any{"limit": limit, "weighted_length": actual},
	}
}

// NewCancelled creates a 499 error for a cancelled operation.
func NewCancelled(operation string) *QuillError {
	return &QuillError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("operation cancelled: %s", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *QuillError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &QuillError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// NewPublishFailed creates a 502 error for a failed publish attempt.
func NewPublishFailed(msg string) *QuillError {
	return &QuillError{
		Code:    ErrPublishFailed,
		Status:  502,
		Message: msg,
	}
}

// Is checks if an error is a QuillError with the given code.
func Is(err error, code ErrorCode) bool {
	if qErr, ok := err.(*QuillError); ok {
		return qErr.Code == code
	}
	return false
}
