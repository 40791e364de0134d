// Package bitgen produces the random test pattern fed to the transmitter.
package bitgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/bft-labs/chanbench/internal/domain"
)

// DefaultMinBits is the smallest pattern a run may use unless overridden.
const DefaultMinBits = 512

// Generator produces uniformly random BitSequences from its own source.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng     *rand.Rand
	minBits int
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator deterministic.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

// WithMinBits overrides DefaultMinBits. Values below 1 are ignored.
func WithMinBits(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.minBits = n
		}
	}
}

// New returns a Generator. Without WithSeed the source is seeded from
// runtime entropy.
func New(opts ...Option) *Generator {
	g := &Generator{minBits: DefaultMinBits}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// MinBits returns the smallest length Generate accepts.
func (g *Generator) MinBits() int { return g.minBits }

// Generate returns exactly n independent, uniformly chosen symbols.
func (g *Generator) Generate(n int) (domain.BitSequence, error) {
	if n < g.minBits {
		return domain.BitSequence{}, fmt.Errorf("%w: requested %d, minimum %d", domain.ErrTooFewBits, n, g.minBits)
	}

	buf := make([]byte, n)
	for i := 0; i < n; i += 64 {
		word := g.rng.Uint64()
		for j := i; j < n && j < i+64; j++ {
			buf[j] = '0' + byte(word&1)
			word >>= 1
		}
	}
	return domain.ParseBits(string(buf))
}
