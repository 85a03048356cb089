package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/torosent/lockbench/internal/lock"
	"github.com/torosent/lockbench/internal/workload"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lockbench",
		Short:         "Compare lock strategies under a burst of contending tasks",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Benchmark flags
	flags.IntP("tasks", "n", DefaultTasks, "Number of concurrent tasks per strategy")
	flags.Duration("work", DefaultWork, "Duration of the work unit each task runs inside the lock")
	flags.String("workload", DefaultWorkload, fmt.Sprintf("Work unit kind (%s)", strings.Join(workload.Kinds(), ", ")))
	flags.StringSliceP("strategy", "s", nil, fmt.Sprintf("Lock strategy to run, repeatable (%s; default %s)",
		strings.Join(lock.Keys(), ", "), strings.Join(lock.DefaultKeys(), ",")))
	flags.Duration("deadline", 0, "Abort a strategy run after this long (0 means no deadline)")
	flags.Int("procs", 0, "GOMAXPROCS for the run (0 keeps the runtime default)")

	// Output flags
	flags.Bool("json-output", false, "Emit a JSON report after all strategies")
	flags.Bool("yaml-output", false, "Emit a YAML report after all strategies")
	flags.Bool("compare", false, "Print a comparison table after all strategies")
	flags.Bool("progress", false, "Show a live progress line while a strategy runs")
	flags.Bool("dashboard", false, "Show live terminal dashboard with metrics")
	flags.Bool("log-errors", false, "Log each failed task to stderr")
	flags.BoolP("verbose", "v", false, "Print the environment and per-strategy percentiles")
	flags.Bool("no-pause", false, "Exit without waiting for a line on stdin")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Threshold flags
	flags.StringSlice("threshold", nil, "Performance thresholds (repeatable, e.g., 'task_duration:p99 < 50')")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("tracing-sample-rate", 1.0, "Trace sampling ratio between 0.0 and 1.0")
	flags.String("tracing-service-name", "", "Service name reported on spans (default lockbench)")

	// Diagnostics flags
	flags.String("statsd-addr", "", "DogStatsD address to publish summary metrics to (e.g. 127.0.0.1:8125)")
	flags.String("lock-file", "", "Advisory lock file; a second run sharing the path exits instead of skewing timings")
	flags.Bool("gops", false, "Start the gops diagnostics agent for the duration of the run")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\n%s\n\nFlags:\n", cmd.UseLine(), cmd.Short)
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("tasks") {
		val, err := fs.GetInt("tasks")
		if err != nil {
			return err
		}
		cfg.Tasks = val
	}
	if fs.Changed("work") {
		val, err := fs.GetDuration("work")
		if err != nil {
			return err
		}
		cfg.Work = val
	}
	if fs.Changed("workload") {
		val, err := fs.GetString("workload")
		if err != nil {
			return err
		}
		cfg.Workload = val
	}
	if fs.Changed("strategy") {
		val, err := fs.GetStringSlice("strategy")
		if err != nil {
			return err
		}
		cfg.Strategies = val
	}
	if fs.Changed("deadline") {
		val, err := fs.GetDuration("deadline")
		if err != nil {
			return err
		}
		cfg.Deadline = val
	}
	if fs.Changed("procs") {
		val, err := fs.GetInt("procs")
		if err != nil {
			return err
		}
		cfg.Procs = val
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"json-output", &cfg.JSONOutput},
		{"yaml-output", &cfg.YAMLOutput},
		{"compare", &cfg.Compare},
		{"progress", &cfg.Progress},
		{"dashboard", &cfg.Dashboard},
		{"log-errors", &cfg.LogErrors},
		{"verbose", &cfg.Verbose},
		{"no-pause", &cfg.NoPause},
		{"tracing-insecure", &cfg.Tracing.Insecure},
		{"gops", &cfg.Gops},
	}
	for _, b := range bools {
		if !fs.Changed(b.name) {
			continue
		}
		val, err := fs.GetBool(b.name)
		if err != nil {
			return err
		}
		*b.dst = val
	}

	if fs.Changed("threshold") {
		val, err := fs.GetStringSlice("threshold")
		if err != nil {
			return err
		}
		cfg.Thresholds = val
	}

	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}

	if fs.Changed("statsd-addr") {
		val, err := fs.GetString("statsd-addr")
		if err != nil {
			return err
		}
		cfg.StatsdAddr = strings.TrimSpace(val)
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = strings.TrimSpace(val)
	}

	return nil
}
