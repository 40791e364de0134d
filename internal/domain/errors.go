package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions of a measurement run.
// These errors can be checked with errors.Is.
var (
	// ErrLaunch is matched by every *LaunchError.
	ErrLaunch = errors.New("chanbench: launch failed")

	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("chanbench: receiver output not parseable")

	// ErrRunTimeout is returned when a run exceeds its maximum duration and
	// both child processes were killed.
	ErrRunTimeout = errors.New("chanbench: run timed out")

	// ErrTooFewBits is returned when a bit count below the configured minimum is requested.
	ErrTooFewBits = errors.New("chanbench: bit count below minimum")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("chanbench: invalid configuration")

	// ErrInvalidBits is returned when a string contains symbols other than 0 and 1.
	ErrInvalidBits = errors.New("chanbench: invalid bit string")
)

// Role names a child process of a run.
type Role string

const (
	RoleReceiver    Role = "receiver"
	RoleTransmitter Role = "transmitter"
)

// LaunchError reports an executable that could not be started.
type LaunchError struct {
	Role Role
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s %q: %v", e.Role, e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// Is reports whether target is ErrLaunch.
func (e *LaunchError) Is(target error) bool { return target == ErrLaunch }

// ParseError reports receiver output that does not carry a valid
// received-bits line. Output holds the raw captured text for diagnosis.
type ParseError struct {
	Reason string
	// Line is the 1-based line number of an offending line, or 0 when the
	// marker was not found at all.
	Line   int
	Output string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse receiver output: %s (line %d)", e.Reason, e.Line)
	}
	return "parse receiver output: " + e.Reason
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// LengthMismatchWarning describes transmitted and received sequences of
// different length. It is recovered locally by truncating both to the
// shorter length.
type LengthMismatchWarning struct {
	Transmitted int
	Received    int
}

func (w *LengthMismatchWarning) Error() string {
	return fmt.Sprintf("expected %d bits, got %d", w.Transmitted, w.Received)
}

// Compared returns the number of positions that remain after truncation.
func (w *LengthMismatchWarning) Compared() int {
	return min(w.Transmitted, w.Received)
}
