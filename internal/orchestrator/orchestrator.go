// Package orchestrator launches the receiver and transmitter of a run and
// captures their output.
//
// The receiver always starts first. After a fixed calibration delay the
// transmitter is started with the pattern as its only payload argument.
// Each child's combined stdout/stderr is drained by its own goroutine into
// an in-memory buffer from the moment it starts, so neither child can block
// on a full pipe while the other is being waited on.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/log"
)

const (
	DefaultCalibrationDelay = 500 * time.Millisecond
	DefaultTimeout          = 30 * time.Minute
	DefaultWaitDelay        = 5 * time.Second
)

// Program is an executable plus arguments placed before the role-specific
// flags. Args allows wrappers such as "taskset -c 2 ./receiver".
type Program struct {
	Path string
	Args []string
}

// Config describes one run.
type Config struct {
	Receiver    Program
	Transmitter Program

	// Bits is passed to the receiver as --bits.
	Bits int
	// Threshold is passed to the receiver as --threshold when positive.
	// Zero lets the receiver calibrate automatically.
	Threshold float64

	CalibrationDelay time.Duration
	// Timeout bounds the whole run. Zero disables it.
	Timeout time.Duration
	// WaitDelay bounds how long output pipes held open by grandchildren
	// are drained after a child exits.
	WaitDelay time.Duration
	// CaptureLimit is the number of output bytes kept per process.
	CaptureLimit int

	// Env is appended to the harness environment for both children.
	Env []string
}

// ProcessResult is the final state of one child process.
type ProcessResult struct {
	Role      domain.Role
	Path      string
	Args      []string
	Output    string
	Truncated bool
	// ExitCode is -1 when the process was killed by a signal.
	ExitCode int
	Started  time.Time
	Exited   time.Time
}

// Result holds both children and the measurement window.
type Result struct {
	Receiver    ProcessResult
	Transmitter ProcessResult

	// TxStart is when the transmitter was launched.
	TxStart time.Time
	// RxEnd is when the receiver exited.
	RxEnd time.Time
}

// Orchestrator runs receiver/transmitter pairs.
type Orchestrator struct {
	cfg Config
	log log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Child output lines are logged at debug level.
func WithLogger(l log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns an Orchestrator for cfg.
func New(cfg Config, opts ...Option) *Orchestrator {
	if cfg.CaptureLimit <= 0 {
		cfg.CaptureLimit = DefaultCaptureLimit
	}
	if cfg.WaitDelay <= 0 {
		cfg.WaitDelay = DefaultWaitDelay
	}
	if cfg.CalibrationDelay < 0 {
		cfg.CalibrationDelay = 0
	}
	o := &Orchestrator{cfg: cfg, log: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReceiverArgs returns the full receiver argument list.
func (o *Orchestrator) ReceiverArgs() []string {
	args := append([]string{}, o.cfg.Receiver.Args...)
	args = append(args, "--bits", strconv.Itoa(o.cfg.Bits))
	if o.cfg.Threshold > 0 {
		args = append(args, "--threshold", strconv.FormatFloat(o.cfg.Threshold, 'f', -1, 64))
	}
	return args
}

// TransmitterArgs returns the full transmitter argument list for pattern.
func (o *Orchestrator) TransmitterArgs(pattern domain.BitSequence) []string {
	args := append([]string{}, o.cfg.Transmitter.Args...)
	return append(args, "--binary", pattern.String())
}

// Run executes one measurement. A non-zero exit status of either child is
// not an error. When the run times out or ctx is canceled both children
// are killed and the partial Result is returned alongside the error.
func (o *Orchestrator) Run(ctx context.Context, pattern domain.BitSequence) (*Result, error) {
	runCtx := ctx
	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	rx, err := o.start(runCtx, domain.RoleReceiver, o.cfg.Receiver.Path, o.ReceiverArgs())
	if err != nil {
		return nil, err
	}

	if err := sleepContext(runCtx, o.cfg.CalibrationDelay); err != nil {
		rx.wait(o.log)
		return &Result{Receiver: rx.result(), RxEnd: rx.exited}, o.abortErr(ctx, runCtx)
	}

	txStart := time.Now()
	tx, err := o.start(runCtx, domain.RoleTransmitter, o.cfg.Transmitter.Path, o.TransmitterArgs(pattern))
	if err != nil {
		rx.kill()
		rx.wait(o.log)
		return nil, err
	}

	tx.wait(o.log)
	rx.wait(o.log)

	res := &Result{
		Receiver:    rx.result(),
		Transmitter: tx.result(),
		TxStart:     txStart,
		RxEnd:       rx.exited,
	}
	if runCtx.Err() != nil {
		return res, o.abortErr(ctx, runCtx)
	}
	return res, nil
}

func (o *Orchestrator) abortErr(parent, runCtx context.Context) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", domain.ErrRunTimeout, o.cfg.Timeout)
	}
	return runCtx.Err()
}

func (o *Orchestrator) start(ctx context.Context, role domain.Role, path string, args []string) (*process, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = append(os.Environ(), o.cfg.Env...)
	cmd.WaitDelay = o.cfg.WaitDelay
	// Receivers fork helper processes that share the output pipe; on
	// timeout or cancel the whole group goes, not just the direct child.
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd.Process) }

	logger := o.log
	out := newCaptureBuffer(o.cfg.CaptureLimit, func(line string) {
		logger.Debug(line, log.Role(role))
	})
	// Same writer for both streams: os/exec shares one pipe and one copy
	// goroutine, preserving the interleaving the child produced.
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return nil, &domain.LaunchError{Role: role, Path: path, Err: err}
	}

	p := &process{role: role, path: path, args: args, cmd: cmd, out: out, started: time.Now()}
	o.log.Info("process started", log.Role(role), log.String("path", path), log.Int("pid", cmd.Process.Pid))
	return p, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
