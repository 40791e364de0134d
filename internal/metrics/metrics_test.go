package metrics

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/chanbench/internal/bitgen"
	"github.com/bft-labs/chanbench/internal/domain"
)

func bits(s string) domain.BitSequence { return domain.MustParseBits(s) }

func TestCompute_SingleError(t *testing.T) {
	r := Compute(bits("0101"), bits("0111"), 0)

	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 3, r.Correct)
	assert.Equal(t, 1, r.Errors)
	assert.Equal(t, []int{2}, r.Positions)
	assert.InDelta(t, 75.0, r.Accuracy, 1e-9)
	assert.InDelta(t, 25.0, r.ErrorRate, 1e-9)
	assert.Nil(t, r.Mismatch)
	assert.False(t, r.HasRates)
	assert.False(t, r.Perfect())
}

func TestCompute_Identical(t *testing.T) {
	tx, err := bitgen.New(bitgen.WithSeed(1)).Generate(512)
	require.NoError(t, err)

	r := Compute(tx, tx, 0)
	assert.Equal(t, 512, r.Total)
	assert.Zero(t, r.Errors)
	assert.Empty(t, r.Positions)
	assert.Equal(t, 100.0, r.Accuracy)
	assert.Equal(t, 0.0, r.ErrorRate)
	assert.True(t, r.Perfect())
}

func TestCompute_LengthMismatch(t *testing.T) {
	tx := bits("0000111100")
	rx := bits("000111")

	r := Compute(tx, rx, 0)
	require.NotNil(t, r.Mismatch)
	assert.Equal(t, 10, r.Mismatch.Transmitted)
	assert.Equal(t, 6, r.Mismatch.Received)
	assert.Equal(t, 6, r.Total)
	assert.Equal(t, []int{3}, r.Positions)
	for _, p := range r.Positions {
		assert.Less(t, p, r.Total)
	}

	// Received longer than transmitted.
	r = Compute(rx, tx, 0)
	require.NotNil(t, r.Mismatch)
	assert.Equal(t, 6, r.Total)
}

func TestCompute_AccuracyPlusErrorRate(t *testing.T) {
	g := bitgen.New(bitgen.WithSeed(99))
	for i := 0; i < 20; i++ {
		tx, err := g.Generate(512 + i*37)
		require.NoError(t, err)
		rx, err := g.Generate(512 + i*11)
		require.NoError(t, err)

		r := Compute(tx, rx, 0)
		assert.InDelta(t, 100.0, r.Accuracy+r.ErrorRate, 1e-9)
		assert.Equal(t, r.Errors == 0, r.Accuracy == 100)
	}
}

func TestCompute_Rates(t *testing.T) {
	tx := bits(strings.Repeat("01", 256))
	rx := bits(strings.Repeat("01", 255) + "11")

	r := Compute(tx, rx, 4*time.Second)
	require.True(t, r.HasRates)
	assert.Equal(t, 4*time.Second, r.Elapsed)
	assert.InDelta(t, 128.0, r.Bandwidth, 1e-9)
	assert.InDelta(t, 511.0/4, r.Goodput, 1e-9)
	assert.False(t, math.IsInf(r.Bandwidth, 0) || math.IsNaN(r.Goodput))
}

func TestCompute_NoRatesWithoutElapsed(t *testing.T) {
	tx := bits("0101")
	for _, d := range []time.Duration{0, -time.Second} {
		r := Compute(tx, tx, d)
		assert.False(t, r.HasRates, "elapsed %v", d)
		assert.Zero(t, r.Bandwidth)
		assert.Zero(t, r.Goodput)
		assert.Zero(t, r.Elapsed)
	}
}

func TestCompute_DoesNotMutateInputs(t *testing.T) {
	tx := bits("0101100")
	rx := bits("0111")
	_ = Compute(tx, rx, time.Second)
	assert.Equal(t, "0101100", tx.String())
	assert.Equal(t, "0111", rx.String())
}

func TestFromRecord(t *testing.T) {
	rec := domain.TransmissionRecord{Transmitted: bits("0101"), Received: bits("0111")}
	r := FromRecord(rec, 2*time.Second)
	assert.Equal(t, 1, r.Errors)
	assert.InDelta(t, 2.0, r.Bandwidth, 1e-9)
}
