package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeHTTP       ErrorType = "http"

	// Authentication errors
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"

	// Validation errors
	ErrorTypeValidation ErrorType = "validation"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// Unknown errors
	ErrorTypeUnknown ErrorType = "unknown"
)

// ClientError represents a structured error with context
type ClientError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int

	// AlreadyDone marks conflicts where the requested action was already
	// performed (already liked, already reported), so callers can show a
	// specific message instead of a generic failure.
	AlreadyDone bool
}

// Error implements the error interface
func (e *ClientError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// WithSuggestion adds a helpful suggestion to the error
func (e *ClientError) WithSuggestion(suggestion string) *ClientError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *ClientError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// NewClientError creates a new client error
func NewClientError(errorType ErrorType, message string, cause error) *ClientError {
	return &ClientError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *ClientError {
	err := NewClientError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *ClientError {
	err := NewClientError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *ClientError {
	err := NewClientError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Try logging in again with 'clipstream auth login'"
	return err
}

// HTTPError creates an error from an unexpected HTTP status
func HTTPError(statusCode int, status string) *ClientError {
	err := NewClientError(ErrorTypeHTTP, fmt.Sprintf("Request failed: %s", status), nil)
	err.StatusCode = statusCode
	switch {
	case statusCode == 401:
		err.Type = ErrorTypeUnauthorized
	case statusCode == 403:
		err.Type = ErrorTypeForbidden
	case statusCode == 404:
		err.Type = ErrorTypeNotFound
	case statusCode == 409:
		err.Type = ErrorTypeConflict
	case statusCode == 429:
		err.Type = ErrorTypeRateLimit
	case statusCode >= 500:
		err.Type = ErrorTypeServer
	}
	return err
}

// AlreadyDoneError creates a conflict error for an action that was already
// performed on the server
func AlreadyDoneError(message string) *ClientError {
	err := NewClientError(ErrorTypeConflict, message, nil)
	err.StatusCode = 409
	err.AlreadyDone = true
	return err
}

// ValidationError creates a validation error
func ValidationError(message string) *ClientError {
	return NewClientError(ErrorTypeValidation, message, nil)
}

// IsType reports whether err is a ClientError of the given type
func IsType(err error, errorType ErrorType) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == errorType
	}
	return false
}

// IsAlreadyDone reports whether err is a conflict for an already-performed action
func IsAlreadyDone(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.AlreadyDone
	}
	return false
}
