package output

import (
	"encoding/json"
	"io"
	"runtime"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/torosent/lockbench/internal/metrics"
	"github.com/torosent/lockbench/internal/threshold"
)

// Environment describes the machine and runtime a report was produced on.
type Environment struct {
	GoVersion  string `json:"go_version" yaml:"go_version"`
	GoOS       string `json:"go_os" yaml:"go_os"`
	GoArch     string `json:"go_arch" yaml:"go_arch"`
	GoMaxProcs int    `json:"go_max_procs" yaml:"go_max_procs"`
	GoNumCPU   int    `json:"go_num_cpu" yaml:"go_num_cpu"`
}

// CaptureEnvironment reads the current runtime settings. Call it after
// GOMAXPROCS has been adjusted for the run.
func CaptureEnvironment() Environment {
	return Environment{
		GoVersion:  runtime.Version(),
		GoOS:       runtime.GOOS,
		GoArch:     runtime.GOARCH,
		GoMaxProcs: runtime.GOMAXPROCS(0),
		GoNumCPU:   runtime.NumCPU(),
	}
}

// Parameters echoes the benchmark settings into the report.
type Parameters struct {
	Tasks      int      `json:"tasks" yaml:"tasks"`
	Workload   string   `json:"workload" yaml:"workload"`
	WorkMs     float64  `json:"work_ms" yaml:"work_ms"`
	DeadlineMs float64  `json:"deadline_ms,omitempty" yaml:"deadline_ms,omitempty"`
	Strategies []string `json:"strategies" yaml:"strategies"`
}

// Report is the machine-readable result of one lockbench invocation.
type Report struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Started     time.Time          `json:"started" yaml:"started"`
	Environment Environment        `json:"environment" yaml:"environment"`
	Parameters  Parameters         `json:"parameters" yaml:"parameters"`
	Results     []metrics.Summary  `json:"results" yaml:"results"`
	Thresholds  []threshold.Result `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`
}

// NewReport stamps a report with a fresh run id and the current environment.
func NewReport(params Parameters) *Report {
	return &Report{
		RunID:       ulid.Make().String(),
		Started:     time.Now().UTC(),
		Environment: CaptureEnvironment(),
		Parameters:  params,
	}
}

// Add appends a strategy summary, tagging it with the report's run id.
func (r *Report) Add(s metrics.Summary) {
	s.RunID = r.RunID
	r.Results = append(r.Results, s)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
