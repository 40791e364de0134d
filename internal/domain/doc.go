// Package domain contains the core value objects of a chanbench measurement run.
//
// This package has no dependencies on infrastructure concerns (processes,
// file system, logging) and contains only the measurement vocabulary and
// its invariants.
//
// # Entities
//
//   - [BitSequence]: an immutable ordered string of 0/1 symbols
//   - [TransmissionRecord]: a transmitted/received pair plus run timestamps
//
// # Errors
//
// Fatal conditions are reported as [*LaunchError] and [*ParseError], which
// match the sentinels [ErrLaunch] and [ErrParse] with errors.Is. A length
// difference between the two sequences is not fatal; it is described by
// [*LengthMismatchWarning] and recovered by truncation.
package domain
