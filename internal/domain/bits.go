package domain

import (
	"fmt"
	"strings"
)

// BitSequence is an immutable ordered sequence of binary symbols.
// The zero value is the empty sequence.
type BitSequence struct {
	s string
}

// ParseBits validates s and wraps it as a BitSequence.
func ParseBits(s string) (BitSequence, error) {
	if s == "" {
		return BitSequence{}, fmt.Errorf("%w: empty", ErrInvalidBits)
	}
	if i := strings.IndexFunc(s, func(r rune) bool { return r != '0' && r != '1' }); i >= 0 {
		return BitSequence{}, fmt.Errorf("%w: symbol %q at index %d", ErrInvalidBits, s[i], i)
	}
	return BitSequence{s: s}, nil
}

// MustParseBits is like ParseBits but panics on invalid input.
// Intended for tests and constants.
func MustParseBits(s string) BitSequence {
	b, err := ParseBits(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Len returns the number of symbols.
func (b BitSequence) Len() int { return len(b.s) }

// At returns the symbol ('0' or '1') at index i.
func (b BitSequence) At(i int) byte { return b.s[i] }

// Prefix returns the first n symbols, or the whole sequence when n >= Len.
func (b BitSequence) Prefix(n int) BitSequence {
	if n >= len(b.s) {
		return b
	}
	if n < 0 {
		n = 0
	}
	return BitSequence{s: b.s[:n]}
}

// String returns the sequence as a string of '0' and '1' characters.
func (b BitSequence) String() string { return b.s }

// Equal reports whether both sequences hold the same symbols.
func (b BitSequence) Equal(o BitSequence) bool { return b.s == o.s }
