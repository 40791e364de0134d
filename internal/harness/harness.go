// Package harness drives one measurement run end to end: generate the
// pattern, run the receiver/transmitter pair, parse the receiver's result
// line, compute metrics and render the report.
package harness

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/bft-labs/chanbench/internal/bitgen"
	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/log"
	"github.com/bft-labs/chanbench/internal/metrics"
	"github.com/bft-labs/chanbench/internal/orchestrator"
	"github.com/bft-labs/chanbench/internal/parser"
	"github.com/bft-labs/chanbench/internal/promexport"
	"github.com/bft-labs/chanbench/internal/report"
	"github.com/bft-labs/chanbench/internal/timing"
)

// Runner executes the receiver/transmitter pair for a pattern.
// *orchestrator.Orchestrator satisfies this interface.
type Runner interface {
	Run(ctx context.Context, pattern domain.BitSequence) (*orchestrator.Result, error)
}

// Outcome is what one run produced. Processes is set whenever the children
// were launched, including on parse failure and timeout, so their raw
// output can be shown to the operator.
type Outcome struct {
	RunID     string
	Record    domain.TransmissionRecord
	Report    metrics.Report
	Processes *orchestrator.Result
}

// Harness runs measurements. It is not safe for concurrent use; runs are
// strictly sequential.
type Harness struct {
	gen      *bitgen.Generator
	runner   Runner
	bits     int
	baseline timing.Policy
	renderer report.Renderer
	out      io.Writer
	textfile string
	log      log.Logger
	newID    func() string
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l log.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.log = l
		}
	}
}

// WithBaseline sets the elapsed-time baseline policy. Defaults to timing.Start.
func WithBaseline(p timing.Policy) Option {
	return func(h *Harness) {
		if p != nil {
			h.baseline = p
		}
	}
}

// WithRenderer sets the report renderer. Defaults to report.Text.
func WithRenderer(r report.Renderer) Option {
	return func(h *Harness) {
		if r != nil {
			h.renderer = r
		}
	}
}

// WithOutput sets where the report is written. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) {
		if w != nil {
			h.out = w
		}
	}
}

// WithTextfile enables the Prometheus textfile snapshot at path.
func WithTextfile(path string) Option {
	return func(h *Harness) {
		h.textfile = path
	}
}

// New returns a Harness that measures bits-long patterns from gen.
func New(gen *bitgen.Generator, runner Runner, bits int, opts ...Option) *Harness {
	h := &Harness{
		gen:      gen,
		runner:   runner,
		bits:     bits,
		baseline: timing.Start{},
		renderer: report.Text{},
		out:      os.Stdout,
		log:      log.NewNoopLogger(),
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run performs one measurement. On a fatal error the returned Outcome is
// non-nil whenever the children ran, for diagnostics.
func (h *Harness) Run(ctx context.Context) (*Outcome, error) {
	o := &Outcome{RunID: h.newID()}
	runLog := fields(o.RunID)

	pattern, err := h.gen.Generate(h.bits)
	if err != nil {
		return nil, err
	}
	h.log.Info("starting measurement", append(runLog, log.Int("bits", pattern.Len()))...)

	res, err := h.runner.Run(ctx, pattern)
	o.Processes = res
	if err != nil {
		h.log.Error("run aborted", append(runLog, log.Err(err))...)
		return o, err
	}

	received, err := parser.Parse(res.Receiver.Output)
	if err != nil {
		h.log.Error("could not parse received bits from receiver output", append(runLog, log.Err(err))...)
		return o, err
	}

	o.Record = domain.TransmissionRecord{
		Transmitted: pattern,
		Received:    received,
		Start:       res.TxStart,
		End:         res.RxEnd,
	}
	if w := o.Record.Mismatch(); w != nil {
		h.log.Warn("length mismatch, truncating to shared prefix", append(runLog,
			log.Int("transmitted", w.Transmitted),
			log.Int("received", w.Received),
			log.Int("compared", w.Compared()))...)
	}

	elapsed := timing.Elapsed(h.baseline, o.Record.Start, o.Record.End)
	if elapsed <= 0 {
		h.log.Warn("no positive measurement window, omitting rates", append(runLog,
			log.String("baseline", h.baseline.Name()),
			log.Duration("elapsed", elapsed))...)
	}
	o.Report = metrics.FromRecord(o.Record, elapsed)

	tx, rx := o.Record.Aligned()
	if err := h.renderer.Render(h.out, report.Input{
		RunID:       o.RunID,
		Report:      o.Report,
		Transmitted: tx,
		Received:    rx,
		Start:       o.Record.Start,
		End:         o.Record.End,
	}); err != nil {
		return o, fmt.Errorf("render report: %w", err)
	}

	if h.textfile != "" {
		if err := promexport.WriteTextfile(h.textfile, o.RunID, o.Report); err != nil {
			return o, fmt.Errorf("write metrics textfile: %w", err)
		}
		h.log.Debug("metrics textfile written", append(runLog, log.String("path", h.textfile))...)
	}

	h.log.Info("measurement complete", append(runLog,
		log.Int("errors", o.Report.Errors),
		log.Float64("accuracy", o.Report.Accuracy))...)
	return o, nil
}

func fields(runID string) []log.Field {
	return []log.Field{log.RunID(runID)}
}
