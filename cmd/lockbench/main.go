package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/lockbench/internal/config"
	"github.com/torosent/lockbench/internal/dashboard"
	"github.com/torosent/lockbench/internal/instance"
	"github.com/torosent/lockbench/internal/lock"
	"github.com/torosent/lockbench/internal/metrics"
	"github.com/torosent/lockbench/internal/output"
	"github.com/torosent/lockbench/internal/publish"
	"github.com/torosent/lockbench/internal/runner"
	"github.com/torosent/lockbench/internal/threshold"
	"github.com/torosent/lockbench/internal/tracing"
	"github.com/torosent/lockbench/internal/workload"
)

const (
	progressInterval = time.Second
	shutdownTimeout  = 5 * time.Second
)

// bench carries everything shared by the per-strategy runs of one invocation.
type bench struct {
	cfg       *config.Config
	work      workload.Func
	tracker   *metrics.Tracker
	evaluator *threshold.Evaluator
	publisher *publish.Publisher
	tracer    trace.Tracer
	logger    runner.FailureLogger
	report    *output.Report
	text      io.Writer
	stderr    io.Writer

	failedThresholds int
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LockFile != "" {
		guard, err := instance.Acquire(cfg.LockFile)
		if err != nil {
			return err
		}
		defer guard.Release()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			return fmt.Errorf("gops agent: %w", err)
		}
		defer agent.Close()
	}

	if cfg.Procs > 0 {
		prev := runtime.GOMAXPROCS(cfg.Procs)
		defer runtime.GOMAXPROCS(prev)
	}

	work, err := workload.New(cfg.Workload, cfg.Work)
	if err != nil {
		return err
	}
	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			logf(stderr, "tracing shutdown: %v", shutdownErr)
		}
	}()

	var publisher *publish.Publisher
	if cfg.StatsdAddr != "" {
		publisher, err = publish.New(cfg.StatsdAddr)
		if err != nil {
			return err
		}
		defer publisher.Close()
	}

	report := output.NewReport(output.Parameters{
		Tasks:      cfg.Tasks,
		Workload:   cfg.Workload,
		WorkMs:     float64(cfg.Work) / float64(time.Millisecond),
		DeadlineMs: float64(cfg.Deadline) / float64(time.Millisecond),
		Strategies: cfg.Strategies,
	})
	if cfg.Verbose {
		env := report.Environment
		logf(stderr, "run %s: %s %s/%s GOMAXPROCS=%d NumCPU=%d",
			report.RunID, env.GoVersion, env.GoOS, env.GoArch, env.GoMaxProcs, env.GoNumCPU)
	}

	machineReadable := cfg.JSONOutput || cfg.YAMLOutput

	b := &bench{
		cfg:       cfg,
		work:      work,
		tracker:   metrics.NewTracker(),
		evaluator: threshold.NewEvaluator(thresholds),
		publisher: publisher,
		tracer:    provider.Tracer(),
		report:    report,
		text:      stdout,
		stderr:    stderr,
	}
	if machineReadable {
		b.text = io.Discard
	}
	if cfg.LogErrors {
		logger := newStderrFailureLogger(stderr)
		defer logger.Close()
		b.logger = logger
	}

	// termui owns the terminal while the dashboard runs, so text output is
	// held back until it stops.
	var held bytes.Buffer
	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(b.tracker, dashboard.RunConfig{
			Tasks:      cfg.Tasks,
			Work:       cfg.Work,
			Workload:   cfg.Workload,
			Strategies: cfg.Strategies,
			Deadline:   cfg.Deadline,
			Procs:      cfg.Procs,
			ConfigFile: cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		b.text = &held
		dash.Start()
	}

	runErr := b.runAll(ctx)

	if dash != nil {
		dash.Stop()
		if _, err := held.WriteTo(stdout); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	switch {
	case cfg.JSONOutput:
		if err := output.PrintJSONReport(stdout, report); err != nil {
			return err
		}
	case cfg.YAMLOutput:
		if err := output.PrintYAMLReport(stdout, report); err != nil {
			return err
		}
	default:
		if cfg.Compare {
			output.PrintComparison(stdout, report.Results)
			fmt.Fprintln(stdout)
		}
		fmt.Fprintln(stdout, "Done")
	}

	if cfg.Interactive() {
		waitForLine(stdin)
	}

	if b.failedThresholds > 0 {
		return fmt.Errorf("%d threshold(s) failed", b.failedThresholds)
	}
	return nil
}

// runAll benchmarks every configured strategy in order and stops at the first
// failure.
func (b *bench) runAll(ctx context.Context) (err error) {
	ctx, span := tracing.StartRunSpan(ctx, b.tracer, b.report.RunID, b.cfg.Tasks)
	defer func() { tracing.EndSpan(span, err) }()

	for _, key := range b.cfg.Strategies {
		if err := b.runStrategy(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (b *bench) runStrategy(ctx context.Context, key string) (err error) {
	s, err := lock.New(key)
	if err != nil {
		return err
	}

	ctx, span := tracing.StartStrategySpan(ctx, b.tracer, key, b.cfg.Tasks)
	var finished *metrics.Summary
	defer func() {
		if finished != nil {
			tracing.EndSpan(span, err, tracing.SummaryAttributes(*finished)...)
			return
		}
		tracing.EndSpan(span, err)
	}()

	if b.cfg.Verbose {
		logf(b.stderr, "benchmarking %s with %d tasks", s.Name(), b.cfg.Tasks)
	}

	b.tracker.Begin(s.Name(), b.cfg.Tasks)

	var progress *output.ProgressReporter
	if b.cfg.Progress {
		progress = output.NewProgressReporter(b.tracker, progressInterval, b.stderr)
		progress.Start()
	}

	r := runner.New(runner.Options{
		Tasks:    b.cfg.Tasks,
		Work:     b.work,
		Deadline: b.cfg.Deadline,
		Observer: runner.Chain(b.tracker.Observe, runner.WithLogging(nil, b.logger)),
	})
	result, runErr := r.Run(ctx, s)

	if progress != nil {
		progress.Stop()
	}

	if len(result.Samples) == 0 {
		if runErr == nil {
			runErr = metrics.ErrNoSamples
		}
		return fmt.Errorf("%s: %w", s.Name(), runErr)
	}

	summary, err := metrics.Summarize(result)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name(), err)
	}
	finished = &summary
	b.tracker.Finish(summary)
	b.report.Add(summary)

	output.PrintSummary(b.text, summary)
	if b.cfg.Verbose {
		output.PrintDetails(b.text, summary)
	}

	if results := b.evaluator.Evaluate(summary); len(results) > 0 {
		output.PrintThresholds(b.text, results)
		b.report.Thresholds = append(b.report.Thresholds, results...)
		b.failedThresholds += len(threshold.Failed(results))
	}

	if pubErr := b.publisher.Publish(b.report.RunID, summary); pubErr != nil {
		logf(b.stderr, "%v", pubErr)
	}

	if runErr != nil {
		return fmt.Errorf("%s: %w", s.Name(), runErr)
	}
	return nil
}

// waitForLine blocks until a line (or EOF) arrives on r.
func waitForLine(r io.Reader) {
	if r == nil {
		return
	}
	_, _ = bufio.NewReader(r).ReadString('\n')
}
