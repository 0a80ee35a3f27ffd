package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors the way the share operation and
// HTTP layer report them to callers.
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "INVALID_ARGUMENT"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL"
)

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrConflict           = errors.New("resource conflict")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Domain errors
var (
	ErrTripNotFound   = errors.New("trip not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrSharedNotFound = errors.New("shared trip not found")
	ErrCacheMiss      = errors.New("image cache entry not found")
	ErrNoImage        = errors.New("generator returned no image")
)

// AppError represents a classified application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
	}
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common error constructors

// NewValidationError creates an invalid-argument error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewUnauthenticatedError creates an authentication-required error
func NewUnauthenticatedError(message string) *AppError {
	return NewAppError(ErrorTypeUnauthenticated, message, http.StatusUnauthorized)
}

// NewNotFoundError creates a not-found error for the named resource
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewConflictError creates a conflict error
func NewConflictError(message string) *AppError {
	return NewAppError(ErrorTypeConflict, message, http.StatusConflict)
}

// NewInternalError creates a generic internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// WrapError re-classifies an arbitrary error as internal unless it is
// already an AppError, in which case its original classification survives.
// This is the rule the share operation relies on: specific classes are
// surfaced verbatim, everything unexpected becomes internal.
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeNotFound
	}
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrTripNotFound) ||
		errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrSharedNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if an error is an invalid-argument error
func IsValidation(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeValidation
	}
	return errors.Is(err, ErrInvalidArgument)
}

// IsUnauthenticated checks if an error is an authentication error
func IsUnauthenticated(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeUnauthenticated
	}
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired)
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeConflict
	}
	return errors.Is(err, ErrConflict)
}
