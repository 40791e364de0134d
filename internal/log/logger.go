// Package log provides the structured logging abstraction used by chanbench
// components. A zerolog-backed implementation is used by the CLI and a no-op
// implementation is the default for library callers and tests.
package log

import (
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
)

// Logger provides structured logging capabilities.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Float64 creates a float64 field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field with key "error".
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Role tags a record with the child process it concerns.
func Role(r domain.Role) Field {
	return Field{Key: "role", Value: string(r)}
}

// RunID tags a record with the measurement run it belongs to.
func RunID(id string) Field {
	return Field{Key: "run_id", Value: id}
}

// Any creates a field with any value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
