// Package log defines the logging contract shared by every opentele component.
//
// Overview:
//   - Responsibility: Define a stable structured logging interface
//   - Key Types: Logger interface with structured key-value logging
//   - Concurrency Model: Logger implementations must be safe for concurrent use
//   - Error Semantics: Error method accepts error as first parameter for structured logging
//
// Usage:
//
//	logger := logx.New()
//	logger.Info("connected", log.Str("target", "document store"), log.Dur("elapsed", d))
package log

import "time"

// Logger defines a structured logging interface compatible with slog concepts.
// Implementations must be safe for concurrent use.
type Logger interface {
	// With returns a new Logger with the given key-value pairs attached.
	With(kv ...any) Logger

	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, kv ...any)

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, kv ...any)

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, kv ...any)

	// Error logs an error message. err may be nil.
	Error(err error, msg string, kv ...any)
}

// Str creates a string key-value pair for structured logging.
func Str(k, v string) any {
	return []any{k, v}
}

// Int creates an integer key-value pair for structured logging.
func Int(k string, v int) any {
	return []any{k, v}
}

// Dur creates a duration key-value pair for structured logging.
func Dur(k string, v time.Duration) any {
	return []any{k, v}
}

// Any creates a key-value pair holding an arbitrary value.
func Any(k string, v any) any {
	return []any{k, v}
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (l nopLogger) With(kv ...any) Logger                  { return l }
func (l nopLogger) Debug(msg string, kv ...any)            {}
func (l nopLogger) Info(msg string, kv ...any)             {}
func (l nopLogger) Warn(msg string, kv ...any)             {}
func (l nopLogger) Error(err error, msg string, kv ...any) {}
