package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/chanbench/internal/bitgen"
	"github.com/bft-labs/chanbench/internal/cliconfig"
	"github.com/bft-labs/chanbench/internal/domain"
	"github.com/bft-labs/chanbench/internal/harness"
	"github.com/bft-labs/chanbench/internal/log"
	"github.com/bft-labs/chanbench/internal/orchestrator"
	"github.com/bft-labs/chanbench/internal/report"
	"github.com/bft-labs/chanbench/internal/timing"
	"github.com/bft-labs/chanbench/internal/watch"
)

const helpDescription = `
Measure the fidelity and throughput of a transmitter/receiver pair.

A random bit pattern is handed to the transmitter while the receiver listens.
The receiver must finish by printing:

    received bits -> "<0/1 string>"

chanbench compares both sequences and reports bit errors, accuracy, error
rate and, from the wall-clock window, bandwidth and goodput.
`

var exampleUsage = strings.TrimSpace(`
  chanbench --bits 1024
  chanbench --receiver ./ecc_receiver --transmitter ./ecc_transmitter --baseline next-minute
  chanbench --format json --metrics-textfile /var/lib/node_exporter/chanbench.prom
  chanbench --watch --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	root := a.command()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.logger.Error("chanbench", log.Err(err))
		return 1
	}
	return 0
}

type app struct {
	cfg     cliconfig.Config
	cfgPath string
	logger  log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func newApp(stdout, stderr io.Writer) *app {
	cfg := cliconfig.DefaultConfig()
	return &app{
		cfg:    cfg,
		logger: cliconfig.Logger(stderr, cfg.LogLevel),
		stdout: stdout,
		stderr: stderr,
	}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "chanbench",
		Short:         "Benchmark a two-process bit link by comparing what was sent with what was received",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.configure(cmd.Flags()); err != nil {
				return err
			}
			return a.run(cmd.Context())
		},
	}

	cfg := &a.cfg
	f := root.Flags()
	f.StringVar(&a.cfgPath, "config", "", "path to config file, TOML or YAML (default: $HOME/.chanbench/config.toml)")
	f.IntVar(&cfg.Bits, "bits", cfg.Bits, "number of bits to transmit (raised to --min-bits if lower)")
	f.IntVar(&cfg.MinBits, "min-bits", cfg.MinBits, "smallest accepted bit count")
	if err := f.MarkHidden("min-bits"); err != nil {
		a.logger.Info("failed to hide min-bits flag", log.Err(err))
	}
	f.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "receiver decision threshold passed as --threshold (0 = receiver calibrates)")
	f.StringVar(&cfg.Receiver, "receiver", cfg.Receiver, "receiver executable")
	f.StringArrayVar(&cfg.ReceiverArgs, "receiver-arg", nil, "argument placed before the receiver flags (repeatable, taken verbatim)")
	f.StringVar(&cfg.Transmitter, "transmitter", cfg.Transmitter, "transmitter executable")
	f.StringArrayVar(&cfg.TransmitterArgs, "transmitter-arg", nil, "argument placed before the transmitter flags (repeatable, taken verbatim)")
	f.DurationVar(&cfg.CalibrationDelay, "delay", cfg.CalibrationDelay, "calibration delay between receiver and transmitter start")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "maximum run duration before both processes are killed (0 = unbounded)")
	f.StringVar(&cfg.Baseline, "baseline", cfg.Baseline, "elapsed-time baseline: start or next-minute")
	f.Int64Var(&cfg.Seed, "seed", 0, "seed for a reproducible bit pattern (default: fresh entropy)")
	f.StringVar(&cfg.Format, "format", cfg.Format, "report format: "+strings.Join(report.Formats(), ", "))
	f.StringVar(&cfg.MetricsTextfile, "metrics-textfile", "", "write a Prometheus textfile snapshot of each run")
	f.BoolVar(&cfg.Watch, "watch", false, "re-run whenever the receiver or transmitter binary changes")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug streams child output)")

	return root
}

// configure layers the config file and environment under the flags that
// were set explicitly, then validates the result.
func (a *app) configure(flags *pflag.FlagSet) error {
	// Precedence: flags > CHANBENCH_* env > config file > defaults.
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	flags.Visit(func(f *pflag.Flag) { changed[f.Name] = true })
	a.cfg.SeedSet = changed["seed"]

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	a.logger = cliconfig.Logger(a.stderr, a.cfg.LogLevel)

	requested := a.cfg.Bits
	if a.cfg.EnforceBitFloor() {
		a.logger.Warn("bit count raised to minimum",
			log.Int("requested", requested), log.Int("bits", a.cfg.Bits))
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger.Debug("configuration", log.Any("config", a.cfg))
	return nil
}

// run performs one measurement, or keeps measuring in watch mode.
func (a *app) run(ctx context.Context) error {
	h, err := newHarness(a.cfg, a.logger, a.stdout)
	if err != nil {
		return err
	}

	if !a.cfg.Watch {
		return measure(ctx, h, a.stderr)
	}

	// Watch before the first run so a rebuild during it is not missed.
	w, err := watch.New([]string{a.cfg.Receiver, a.cfg.Transmitter}, watch.DefaultDebounce, a.logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := measure(ctx, h, a.stderr); err != nil {
		a.logger.Error("measurement failed", log.Err(err))
	}
	return w.Run(ctx, func(ctx context.Context) {
		if err := measure(ctx, h, a.stderr); err != nil {
			a.logger.Error("measurement failed", log.Err(err))
		}
	})
}

func newHarness(cfg cliconfig.Config, logger log.Logger, out io.Writer) (*harness.Harness, error) {
	baseline, err := timing.Parse(cfg.Baseline)
	if err != nil {
		return nil, err
	}
	renderer, err := report.New(cfg.Format)
	if err != nil {
		return nil, err
	}

	genOpts := []bitgen.Option{bitgen.WithMinBits(cfg.MinBits)}
	if cfg.SeedSet {
		genOpts = append(genOpts, bitgen.WithSeed(cfg.Seed))
	}

	orch := orchestrator.New(orchestrator.Config{
		Receiver:         orchestrator.Program{Path: cfg.Receiver, Args: cfg.ReceiverArgs},
		Transmitter:      orchestrator.Program{Path: cfg.Transmitter, Args: cfg.TransmitterArgs},
		Bits:             cfg.Bits,
		Threshold:        cfg.Threshold,
		CalibrationDelay: cfg.CalibrationDelay,
		Timeout:          cfg.Timeout,
	}, orchestrator.WithLogger(logger))

	return harness.New(bitgen.New(genOpts...), orch, cfg.Bits,
		harness.WithLogger(logger),
		harness.WithBaseline(baseline),
		harness.WithRenderer(renderer),
		harness.WithOutput(out),
		harness.WithTextfile(cfg.MetricsTextfile),
	), nil
}

// measure runs once and dumps raw child output when the run failed in a
// way the operator needs to see it.
func measure(ctx context.Context, h *harness.Harness, diag io.Writer) error {
	o, err := h.Run(ctx)
	if err != nil && (errors.Is(err, domain.ErrParse) || errors.Is(err, domain.ErrRunTimeout)) {
		harness.WriteDiagnostics(diag, o)
	}
	return err
}
