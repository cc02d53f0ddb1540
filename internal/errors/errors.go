package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Access codes
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyUsed   ErrorCode = "ALREADY_USED"
	ErrCodeNotOneTime    ErrorCode = "NOT_ONE_TIME"
	ErrCodeNotUsed       ErrorCode = "NOT_USED"
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	ErrCodeProtectedCode ErrorCode = "PROTECTED_CODE"

	// Authentication & Authorization
	ErrCodeInvalidAdmin   ErrorCode = "INVALID_ADMIN"
	ErrCodeInvalidSession ErrorCode = "INVALID_SESSION"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"

	// Rate Limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
	ErrCodeExternal ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func AlreadyUsed() *AppError {
	return New(ErrCodeAlreadyUsed, "Access code has already been used")
}

func NotOneTime() *AppError {
	return New(ErrCodeNotOneTime, "Only one-time codes can be reset")
}

func NotUsed() *AppError {
	return New(ErrCodeNotUsed, "Access code is not used; nothing to reset")
}

func AlreadyExists(resource string) *AppError {
	return New(ErrCodeAlreadyExists, fmt.Sprintf("%s already exists", resource))
}

func ProtectedCode() *AppError {
	return New(ErrCodeProtectedCode, "The admin access code cannot be deleted")
}

func InvalidAdmin() *AppError {
	return New(ErrCodeInvalidAdmin, "Invalid admin code")
}

func InvalidSession(reason string) *AppError {
	return New(ErrCodeInvalidSession, reason)
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func RateLimitExceeded() *AppError {
	return New(ErrCodeRateLimitExceeded, "Rate limit exceeded")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Storage(cause error) *AppError {
	return Wrap(ErrCodeStorage, "Storage error", cause)
}

func External(service string, cause error) *AppError {
	return Wrap(ErrCodeExternal, fmt.Sprintf("External service error: %s", service), cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
