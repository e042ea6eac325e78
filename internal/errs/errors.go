// Package errs defines the error taxonomy shared by the registry, handler
// store, trap engine and facade.
package errs

import (
	"errors"
	"fmt"
)

// Code categorizes interception errors.
type Code string

const (
	// CodeInvalidTarget indicates a registration without a usable target,
	// or use of a handle whose target has been cleared.
	CodeInvalidTarget Code = "INVALID_TARGET"

	// CodeNoSuchProperty indicates trap installation on a property the
	// target does not have.
	CodeNoSuchProperty Code = "NO_SUCH_PROPERTY"

	// CodeHandlerInstallation indicates the engine could not install its
	// accessor or dispatch function.
	CodeHandlerInstallation Code = "HANDLER_INSTALLATION"

	// CodeInvalidEvent indicates a malformed "phase:key" event spec.
	CodeInvalidEvent Code = "INVALID_EVENT"
)

// Error is the structured error returned by the interception layers.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Key is the property key involved, if any.
	Key string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Key != "" {
		msg = fmt.Sprintf("%s (key=%q)", msg, e.Key)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidTarget creates an INVALID_TARGET error.
func NewInvalidTarget(message string) *Error {
	return &Error{Code: CodeInvalidTarget, Message: message}
}

// NewNoSuchProperty creates a NO_SUCH_PROPERTY error for key.
func NewNoSuchProperty(key string) *Error {
	return &Error{
		Code:    CodeNoSuchProperty,
		Key:     key,
		Message: "cannot trap a property the target does not have",
	}
}

// NewHandlerInstallation creates a HANDLER_INSTALLATION error wrapping cause.
func NewHandlerInstallation(key string, cause error) *Error {
	return &Error{
		Code:    CodeHandlerInstallation,
		Key:     key,
		Message: "failed to install handler",
		Err:     cause,
	}
}

// NewInvalidEvent creates an INVALID_EVENT error for spec.
func NewInvalidEvent(spec, reason string) *Error {
	return &Error{
		Code:    CodeInvalidEvent,
		Message: fmt.Sprintf("invalid event %q: %s", spec, reason),
	}
}

// CodeOf returns the Code of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalidTarget reports whether err is an INVALID_TARGET error.
func IsInvalidTarget(err error) bool {
	return CodeOf(err) == CodeInvalidTarget
}

// IsNoSuchProperty reports whether err is a NO_SUCH_PROPERTY error.
func IsNoSuchProperty(err error) bool {
	return CodeOf(err) == CodeNoSuchProperty
}

// IsHandlerInstallation reports whether err is a HANDLER_INSTALLATION error.
func IsHandlerInstallation(err error) bool {
	return CodeOf(err) == CodeHandlerInstallation
}

// IsInvalidEvent reports whether err is an INVALID_EVENT error.
func IsInvalidEvent(err error) bool {
	return CodeOf(err) == CodeInvalidEvent
}
