package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/chanbench/internal/bitgen"
	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/orchestrator"
	"github.com/bft-labs/chanbench/internal/report"
	"github.com/bft-labs/chanbench/internal/timing"
)

// fakeRunner answers with a receiver output derived from the pattern.
type fakeRunner struct {
	received func(tx string) string
	output   func(tx string) string
	elapsed  time.Duration
	err      error
	calls    int
}

func (f *fakeRunner) Run(_ context.Context, pattern domain.BitSequence) (*orchestrator.Result, error) {
	f.calls++
	start := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)
	out := ""
	if f.output != nil {
		out = f.output(pattern.String())
	} else {
		out = fmt.Sprintf("receiver: calibrating\nreceiver: received bits -> %q\n", f.received(pattern.String()))
	}
	res := &orchestrator.Result{
		Receiver:    orchestrator.ProcessResult{Role: domain.RoleReceiver, Output: out},
		Transmitter: orchestrator.ProcessResult{Role: domain.RoleTransmitter, Output: "transmitter: done.\n"},
		TxStart:     start,
		RxEnd:       start.Add(f.elapsed),
	}
	return res, f.err
}

func newHarness(r *fakeRunner, out *bytes.Buffer, opts ...Option) *Harness {
	opts = append([]Option{WithOutput(out)}, opts...)
	h := New(bitgen.New(bitgen.WithSeed(5)), r, 512, opts...)
	h.newID = func() string { return "run-test" }
	return h
}

func TestRun_Perfect(t *testing.T) {
	var out bytes.Buffer
	r := &fakeRunner{received: func(tx string) string { return tx }, elapsed: 8 * time.Second}

	o, err := newHarness(r, &out).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-test", o.RunID)
	assert.Equal(t, 512, o.Report.Total)
	assert.Zero(t, o.Report.Errors)
	assert.Equal(t, 100.0, o.Report.Accuracy)
	assert.True(t, o.Report.HasRates)
	assert.InDelta(t, 64.0, o.Report.Bandwidth, 1e-9)
	assert.Contains(t, out.String(), "No errors detected — perfect transmission!")
	assert.Contains(t, out.String(), "Bandwidth              : 64.00 bits/s")
}

func TestRun_ShortReceive(t *testing.T) {
	var out bytes.Buffer
	r := &fakeRunner{received: func(tx string) string {
		// Drop the tail and flip bit 2.
		b := []byte(tx[:500])
		b[2] ^= 1
		return string(b)
	}, elapsed: time.Second}

	o, err := newHarness(r, &out).Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, o.Report.Mismatch)
	assert.Equal(t, 500, o.Report.Total)
	assert.Equal(t, []int{2}, o.Report.Positions)
	assert.Contains(t, out.String(), "WARNING: expected 512 bits, got 500")
	assert.Contains(t, out.String(), "Error positions: [2]")
}

func TestRun_ParseError(t *testing.T) {
	var out bytes.Buffer
	r := &fakeRunner{output: func(string) string { return "receiver: crashed\n" }}

	o, err := newHarness(r, &out).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
	require.NotNil(t, o)
	require.NotNil(t, o.Processes)
	assert.Zero(t, o.Report.Total, "no report on parse failure")
	assert.Empty(t, out.String())

	var diag bytes.Buffer
	WriteDiagnostics(&diag, o)
	assert.Contains(t, diag.String(), "----- receiver output (exit 0) -----\nreceiver: crashed\n")
	assert.Contains(t, diag.String(), "----- end transmitter output -----")
}

func TestRun_RunnerError(t *testing.T) {
	var out bytes.Buffer
	r := &fakeRunner{received: func(tx string) string { return tx }, err: domain.ErrRunTimeout}

	o, err := newHarness(r, &out).Run(context.Background())
	assert.True(t, errors.Is(err, domain.ErrRunTimeout))
	require.NotNil(t, o)
	assert.NotNil(t, o.Processes)
	assert.Empty(t, out.String())
}

func TestRun_TooFewBits(t *testing.T) {
	r := &fakeRunner{received: func(tx string) string { return tx }}
	h := New(bitgen.New(), r, 100, WithOutput(&bytes.Buffer{}))

	_, err := h.Run(context.Background())
	assert.True(t, errors.Is(err, domain.ErrTooFewBits))
	assert.Zero(t, r.calls)
}

func TestRun_NextMinuteBaselineOmitsRates(t *testing.T) {
	var out bytes.Buffer
	// Starts at :10 and ends at :40, before the next-minute baseline.
	r := &fakeRunner{received: func(tx string) string { return tx }, elapsed: 30 * time.Second}

	o, err := newHarness(r, &out, WithBaseline(timing.NextMinute{})).Run(context.Background())
	require.NoError(t, err)
	assert.False(t, o.Report.HasRates)
	assert.NotContains(t, out.String(), "Bandwidth")
}

func TestRun_JSONAndTextfile(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "run.prom")
	r := &fakeRunner{received: func(tx string) string { return tx }, elapsed: 2 * time.Second}

	_, err := newHarness(r, &out, WithRenderer(report.JSON{}), WithTextfile(path)).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), `{"run_id":"run-test"`))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `chanbench_bits_compared{run_id="run-test"} 512`)
}
