// Package errors provides the structured error taxonomy used across opentele.
//
// Overview:
//   - Responsibility: Error codes, structured wrapping and the lifecycle error types
//   - Key Types: Code, E, ConfigError, ConnectError, DisconnectError
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library errors.Is / errors.As
//
// Usage:
//
//	err := errors.NewConfigError("MONGO_CONNECTION_STRING", "connection string is required")
//	err = &errors.ConnectError{Target: "broker", Reason: errors.ReasonTimeout}
//	code := errors.CodeOf(err) // DEADLINE_EXCEEDED
package errors

import (
	"errors"
	"fmt"
)

// Code represents an error classification code.
type Code string

// Common error codes (aligned with Connect/gRPC codes)
const (
	CodeInvalidArgument  Code = "INVALID_ARGUMENT"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeInternal         Code = "INTERNAL"
	CodeUnavailable      Code = "UNAVAILABLE"
	CodeDeadlineExceeded Code = "DEADLINE_EXCEEDED"
	CodeAborted          Code = "ABORTED"
)

// Coder is implemented by errors that carry a classification code.
type Coder interface {
	ErrorCode() Code
}

// E represents a structured error with code, operation and message.
type E struct {
	Code Code   // Error classification code
	Op   string // Operation that failed
	Err  error  // Underlying error (may be nil)
	Msg  string // Human-readable message
}

// Error implements the error interface.
func (e *E) Error() string {
	prefix := string(e.Code)
	if e.Op != "" {
		prefix += ": " + e.Op
	}
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Msg)
	}
}

// Unwrap returns the underlying error for error unwrapping.
func (e *E) Unwrap() error {
	return e.Err
}

// ErrorCode implements Coder.
func (e *E) ErrorCode() Code {
	return e.Code
}

// New creates a new structured error with the given code and message.
func New(code Code, msg string) error {
	return &E{Code: code, Msg: msg}
}

// Wrap creates a new structured error wrapping an existing error.
// The operation name helps identify where the error occurred.
func Wrap(code Code, op string, err error) error {
	return &E{Code: code, Op: op, Err: err}
}

// Wrapf creates a new structured error wrapping an existing error with formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{Code: code, Op: op, Err: err, Msg: fmt.Sprintf(format, args...)}
}

// ConfigError reports a required configuration value that is missing or malformed.
// It is always fatal at startup.
type ConfigError struct {
	Key string // Configuration key, e.g. MONGO_CONNECTION_STRING
	Msg string
}

// NewConfigError creates a ConfigError for key.
func NewConfigError(key, msg string) error {
	return &ConfigError{Key: key, Msg: msg}
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

// ErrorCode implements Coder.
func (e *ConfigError) ErrorCode() Code {
	return CodeInvalidArgument
}

// ConnectReason tells a timed-out connection attempt apart from a failed one.
type ConnectReason string

const (
	ReasonTimeout    ConnectReason = "timeout"
	ReasonUnderlying ConnectReason = "underlying"
)

// ConnectError reports that a dependency could not be reached.
type ConnectError struct {
	Target string
	Reason ConnectReason
	Err    error // underlying cause; nil for timeouts
}

func (e *ConnectError) Error() string {
	if e.Reason == ReasonTimeout {
		return fmt.Sprintf("connect %s: timed out", e.Target)
	}
	return fmt.Sprintf("connect %s: %v", e.Target, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ErrorCode implements Coder.
func (e *ConnectError) ErrorCode() Code {
	if e.Reason == ReasonTimeout {
		return CodeDeadlineExceeded
	}
	return CodeUnavailable
}

// Timeout reports whether the attempt ran out of time.
func (e *ConnectError) Timeout() bool {
	return e.Reason == ReasonTimeout
}

// DisconnectError reports a failed teardown of a dependency.
type DisconnectError struct {
	Target string
	Err    error
}

func (e *DisconnectError) Error() string {
	return fmt.Sprintf("disconnect %s: %v", e.Target, e.Err)
}

func (e *DisconnectError) Unwrap() error {
	return e.Err
}

// ErrorCode implements Coder.
func (e *DisconnectError) ErrorCode() Code {
	return CodeInternal
}

// CodeOf extracts the error code from an error chain.
// Returns empty string if no error in the chain carries a code.
func CodeOf(err error) Code {
	var c Coder
	if err != nil && errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// IsCode checks if an error has a specific code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IsConfig reports whether err is or wraps a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTimeout reports whether err is or wraps a timed-out ConnectError.
func IsTimeout(err error) bool {
	var ce *ConnectError
	return errors.As(err, &ce) && ce.Timeout()
}

// As is a convenience wrapper around the standard library's errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Join is a convenience wrapper around the standard library's errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
