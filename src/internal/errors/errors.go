// Package errors provides domain-specific error types for manual-connections.
//
// This package defines structured errors with error codes, making it easier to handle
// and test different error conditions consistently across the application.
package errors

import "fmt"

// ErrorCode represents a category of error that can occur in the application.
type ErrorCode string

const (
	// ErrCodeConfig indicates a configuration-related error.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// ErrCodeAuth indicates an authentication failure against the provider API.
	ErrCodeAuth ErrorCode = "AUTH_ERROR"

	// ErrCodeAPI indicates an error communicating with the provider API.
	ErrCodeAPI ErrorCode = "API_ERROR"

	// ErrCodePlacement indicates a tunnel config field could not be placed
	// because its anchor line does not exist in the document.
	ErrCodePlacement ErrorCode = "PLACEMENT_ERROR"

	// ErrCodeNetwork indicates a network configuration error (routes, firewall rules).
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// ErrCodeInterface indicates an error related to the tunnel interface.
	ErrCodeInterface ErrorCode = "INTERFACE_ERROR"

	// ErrCodePortForward indicates a port forwarding signature or bind error.
	ErrCodePortForward ErrorCode = "PORT_FORWARD_ERROR"

	// ErrCodeValidation indicates a validation error.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a domain-specific error with an error code and optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new domain error with the specified code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, cause error) *Error {
	return Wrap(ErrCodeConfig, message, cause)
}

// NewAuthError creates a new authentication error.
func NewAuthError(message string, cause error) *Error {
	return Wrap(ErrCodeAuth, message, cause)
}

// NewAPIError creates a new provider API error.
func NewAPIError(message string, cause error) *Error {
	return Wrap(ErrCodeAPI, message, cause)
}

// NewPlacementError creates a new field placement error.
func NewPlacementError(message string, cause error) *Error {
	return Wrap(ErrCodePlacement, message, cause)
}

// NewNetworkError creates a new network configuration error.
func NewNetworkError(message string, cause error) *Error {
	return Wrap(ErrCodeNetwork, message, cause)
}

// NewInterfaceError creates a new tunnel interface error.
func NewInterfaceError(message string, cause error) *Error {
	return Wrap(ErrCodeInterface, message, cause)
}

// NewPortForwardError creates a new port forwarding error.
func NewPortForwardError(message string, cause error) *Error {
	return Wrap(ErrCodePortForward, message, cause)
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, cause error) *Error {
	return Wrap(ErrCodeValidation, message, cause)
}

// NewInternalError creates a new internal error.
func NewInternalError(message string, cause error) *Error {
	return Wrap(ErrCodeInternal, message, cause)
}
