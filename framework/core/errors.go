// Package core provides the framework-wide error type. Argument-validation
// failures are returned as *FrameworkError; runtime dispatch mismatches
// (handled at the bus level) are logged instead of wrapped here.
package core

import (
	"fmt"
	"runtime"
	"strings"
)

// Framework-wide error codes. Package-specific codes (e.g. framework/bus)
// define their own constants but reuse this shape.
const (
	ErrNotFound             = "NOT_FOUND"
	ErrAlreadyExists        = "ALREADY_EXISTS"
	ErrInvalidConfig        = "INVALID_CONFIG"
	ErrInitializationFailed = "INITIALIZATION_FAILED"
	ErrDependencyNotFound   = "DEPENDENCY_NOT_FOUND"
	ErrInvalidArgument      = "INVALID_ARGUMENT"
)

// FrameworkError is the base error type carrying a stable code, a message,
// an optional cause, and a captured stack trace.
type FrameworkError struct {
	Code       string
	Message    string
	Cause      error
	StackTrace string
}

func (e *FrameworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FrameworkError) Unwrap() error {
	return e.Cause
}

// Is matches by code, so callers can use errors.Is(err, core.NewError(code, "")).
func (e *FrameworkError) Is(target error) bool {
	if t, ok := target.(*FrameworkError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a fresh framework error with a captured stack trace.
func NewError(code, message string) *FrameworkError {
	return &FrameworkError{
		Code:       code,
		Message:    message,
		StackTrace: captureStackTrace(),
	}
}

// Wrap attaches a code and message to an existing error, preserving it as
// the cause. Returns nil if err is nil.
func Wrap(err error, code, message string) *FrameworkError {
	if err == nil {
		return nil
	}
	return &FrameworkError{
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: captureStackTrace(),
	}
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	lines := strings.Split(stack, "\n")
	if len(lines) > 4 {
		lines = lines[4:]
	}
	return strings.Join(lines, "\n")
}
