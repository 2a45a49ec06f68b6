package core

import "fmt"

// Error is the error type used across the agent.
type Error struct {
	Type    ErrorType
	Message string
	Param   string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// ErrConfiguration means required metadata or configuration is missing.
	// Fatal: the session never starts and no external calls are made.
	ErrConfiguration ErrorType = "configuration_error"

	// ErrToolInvocation means a tool call's underlying external request failed.
	// Recoverable: the failure is explained to the model and the session continues.
	ErrToolInvocation ErrorType = "tool_invocation_error"

	// ErrState means a tool was invoked while its preconditions were not met.
	// Recoverable, and never reaches the external service.
	ErrState ErrorType = "state_error"

	// ErrTransport means a room/session administrative call failed during
	// teardown. Logged only, never escalated, never retried.
	ErrTransport ErrorType = "transport_error"
)

// NewConfigurationError creates a configuration error.
func NewConfigurationError(message string) *Error {
	return &Error{
		Type:    ErrConfiguration,
		Message: message,
	}
}

// NewConfigurationErrorWithParam creates a configuration error naming the
// offending field or variable.
func NewConfigurationErrorWithParam(message, param string) *Error {
	return &Error{
		Type:    ErrConfiguration,
		Message: message,
		Param:   param,
	}
}

// NewToolInvocationError creates a tool invocation error.
func NewToolInvocationError(message string, cause error) *Error {
	return &Error{
		Type:    ErrToolInvocation,
		Message: message,
		cause:   cause,
	}
}

// NewStateError creates a state error.
func NewStateError(message string) *Error {
	return &Error{
		Type:    ErrState,
		Message: message,
	}
}

// NewTransportError creates a transport error.
func NewTransportError(message string, cause error) *Error {
	return &Error{
		Type:    ErrTransport,
		Message: message,
		cause:   cause,
	}
}

// IsFatal reports whether the error must abort session start.
func (e *Error) IsFatal() bool {
	return e.Type == ErrConfiguration
}
