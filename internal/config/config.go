// Package config loads lockbench settings from flags and an optional config file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/torosent/lockbench/internal/lock"
	"github.com/torosent/lockbench/internal/threshold"
	"github.com/torosent/lockbench/internal/workload"
)

const (
	DefaultTasks    = 1000
	DefaultWork     = workload.DefaultDuration
	DefaultWorkload = workload.KindSleep

	highTaskWarning = 100_000
)

type Config struct {
	Tasks      int           `mapstructure:"tasks"`
	Work       time.Duration `mapstructure:"work"`
	Workload   string        `mapstructure:"workload"`
	Strategies []string      `mapstructure:"strategies"`
	Deadline   time.Duration `mapstructure:"deadline"`
	Procs      int           `mapstructure:"procs"`
	JSONOutput bool          `mapstructure:"json_output"`
	YAMLOutput bool          `mapstructure:"yaml_output"`
	Compare    bool          `mapstructure:"compare"`
	Progress   bool          `mapstructure:"progress"`
	Dashboard  bool          `mapstructure:"dashboard"`
	LogErrors  bool          `mapstructure:"log_errors"`
	Verbose    bool          `mapstructure:"verbose"`
	NoPause    bool          `mapstructure:"no_pause"`
	Thresholds []string      `mapstructure:"thresholds"`
	Tracing    TracingConfig `mapstructure:"tracing"`
	StatsdAddr string        `mapstructure:"statsd_addr"`
	LockFile   string        `mapstructure:"lock_file"`
	Gops       bool          `mapstructure:"gops"`
	ConfigFile string        `mapstructure:"-"`
}

// TracingConfig controls OTLP export of benchmark spans.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// Enabled reports whether an OTLP endpoint is configured, either explicitly
// or through OTEL_EXPORTER_OTLP_ENDPOINT.
func (t TracingConfig) Enabled() bool {
	if strings.TrimSpace(t.Endpoint) != "" {
		return true
	}
	return os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// Default returns the configuration used when no flags or config file are given.
func Default() *Config {
	return &Config{
		Tasks:      DefaultTasks,
		Work:       DefaultWork,
		Workload:   DefaultWorkload,
		Strategies: lock.DefaultKeys(),
		Tracing:    TracingConfig{SampleRate: 1.0},
	}
}

// Interactive reports whether the run should pause for operator input before exiting.
func (c Config) Interactive() bool {
	return !c.NoPause && !c.JSONOutput && !c.YAMLOutput
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if c.Tasks > highTaskWarning {
		fmt.Fprintf(os.Stderr, "WARNING: High task count configured (%d). Every task is a goroutine parked on the start barrier.\n", c.Tasks)
	}

	if c.Tasks < 1 {
		issues = append(issues, "tasks must be >= 1")
	}
	if c.Work < 0 {
		issues = append(issues, "work must be >= 0")
	}
	if c.Deadline < 0 {
		issues = append(issues, "deadline must be >= 0")
	}
	if c.Procs < 0 {
		issues = append(issues, "procs must be >= 0")
	}
	if !isValidWorkload(c.Workload) {
		issues = append(issues, fmt.Sprintf("workload %q is not supported (supported: %s)", c.Workload, strings.Join(workload.Kinds(), ", ")))
	}

	issues = append(issues, validateStrategies(c.Strategies)...)

	if c.JSONOutput && c.YAMLOutput {
		issues = append(issues, "json-output and yaml-output are mutually exclusive")
	}
	if c.Dashboard && (c.JSONOutput || c.YAMLOutput) {
		issues = append(issues, "dashboard and machine-readable output are mutually exclusive")
	}
	if c.Dashboard && c.Progress {
		issues = append(issues, "dashboard and progress are mutually exclusive")
	}

	if _, err := threshold.ParseMultiple(c.Thresholds); err != nil {
		issues = append(issues, err.Error())
	}

	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func isValidWorkload(kind string) bool {
	for _, k := range workload.Kinds() {
		if kind == k {
			return true
		}
	}
	return false
}

func validateStrategies(keys []string) []string {
	if len(keys) == 0 {
		return []string{"at least one strategy is required"}
	}
	var issues []string
	seen := map[string]int{}
	for idx, key := range keys {
		if _, err := lock.New(key); err != nil {
			issues = append(issues, fmt.Sprintf("strategies[%d]: %v", idx, err))
			continue
		}
		if prev, ok := seen[key]; ok {
			issues = append(issues, fmt.Sprintf("strategies[%d]: duplicate of index %d", idx, prev))
			continue
		}
		seen[key] = idx
	}
	return issues
}

func validateTracingConfig(t TracingConfig) []string {
	var issues []string
	switch strings.ToLower(t.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", t.Protocol))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", t.SampleRate))
	}
	return issues
}
