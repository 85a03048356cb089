package threshold

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/torosent/lockbench/internal/metrics"
)

var thresholdPattern = regexp.MustCompile(`^([a-z_]+):([a-z0-9]+)\s*([<>=!]+)\s*([0-9.]+)$`)

// Threshold represents a performance assertion that can pass or fail.
type Threshold struct {
	Metric    string  `json:"metric" yaml:"metric"`       // e.g., "task_duration", "task_failed"
	Aggregate string  `json:"aggregate" yaml:"aggregate"` // e.g., "p99", "avg", "max", "total", "count"
	Operator  string  `json:"operator" yaml:"operator"`   // e.g., "<", "<=", ">", ">=", "=="
	Value     float64 `json:"value" yaml:"value"`         // The threshold value to compare against
	Raw       string  `json:"raw" yaml:"raw"`             // Original threshold string for display
}

// Result represents the outcome of evaluating a threshold against one strategy.
type Result struct {
	Strategy  string    `json:"strategy" yaml:"strategy"`
	Threshold Threshold `json:"threshold" yaml:"threshold"`
	Actual    float64   `json:"actual" yaml:"actual"`
	Pass      bool      `json:"pass" yaml:"pass"`
	Message   string    `json:"message" yaml:"message"`
}

// Evaluator evaluates thresholds against strategy summaries.
type Evaluator struct {
	thresholds []Threshold
}

// NewEvaluator creates a new threshold evaluator.
func NewEvaluator(thresholds []Threshold) *Evaluator {
	return &Evaluator{
		thresholds: thresholds,
	}
}

// Evaluate checks all thresholds against the summary of one strategy run.
func (e *Evaluator) Evaluate(summary metrics.Summary) []Result {
	if len(e.thresholds) == 0 {
		return nil
	}

	results := make([]Result, 0, len(e.thresholds))
	for _, t := range e.thresholds {
		result := e.evaluateOne(t, summary)
		results = append(results, result)
	}
	return results
}

func (e *Evaluator) evaluateOne(t Threshold, summary metrics.Summary) Result {
	actual, err := extractMetricValue(t, summary)
	if err != nil {
		return Result{
			Strategy:  summary.Strategy,
			Threshold: t,
			Actual:    0,
			Pass:      false,
			Message:   fmt.Sprintf("error: %v", err),
		}
	}

	pass := compareValues(actual, t.Operator, t.Value)
	status := "✓"
	if !pass {
		status = "✗"
	}

	message := fmt.Sprintf("%s %s: %.2f %s %.2f", status, t.Raw, actual, t.Operator, t.Value)
	return Result{
		Strategy:  summary.Strategy,
		Threshold: t,
		Actual:    actual,
		Pass:      pass,
		Message:   message,
	}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Pass {
			failed = append(failed, r)
		}
	}
	return failed
}

// Parse parses a threshold string into a Threshold struct.
// Supported formats:
// - "task_duration:p99 < 50"       (per-task duration percentile in ms)
// - "task_duration:avg < 20"       (average per-task duration in ms)
// - "task_duration:sum < 15000"    (summed per-task duration in ms)
// - "wall_duration:total < 20000"  (wall-clock duration of the run in ms)
// - "wait_duration:sum < 10000"    (summed time spent acquiring in ms)
// - "task_failed:count == 0"       (failed tasks)
// - "task_failed:rate < 0.01"      (failure rate as decimal)
// - "tasks:rate > 50"              (tasks per wall-clock second)
func Parse(s string) (Threshold, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Threshold{}, fmt.Errorf("empty threshold string")
	}

	matches := thresholdPattern.FindStringSubmatch(s)
	if matches == nil {
		return Threshold{}, fmt.Errorf("invalid threshold format: %q (expected format: metric:aggregate operator value, e.g., 'task_duration:p99 < 50')", s)
	}

	metric := matches[1]
	aggregate := matches[2]
	operator := matches[3]
	valueStr := matches[4]

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value %q: %v", valueStr, err)
	}

	if !isValidMetric(metric) {
		return Threshold{}, fmt.Errorf("unsupported metric: %q (supported: task_duration, wall_duration, wait_duration, task_failed, tasks)", metric)
	}

	if !isValidAggregate(aggregate) {
		return Threshold{}, fmt.Errorf("unsupported aggregate: %q (supported: p50, p90, p99, avg, min, max, sum, total, rate, count)", aggregate)
	}

	if !isValidOperator(operator) {
		return Threshold{}, fmt.Errorf("unsupported operator: %q (supported: <, <=, >, >=, ==)", operator)
	}

	return Threshold{
		Metric:    metric,
		Aggregate: aggregate,
		Operator:  operator,
		Value:     value,
		Raw:       s,
	}, nil
}

// ParseMultiple parses multiple threshold strings.
func ParseMultiple(thresholds []string) ([]Threshold, error) {
	if len(thresholds) == 0 {
		return nil, nil
	}

	result := make([]Threshold, 0, len(thresholds))
	var errors []string

	for i, s := range thresholds {
		t, err := Parse(s)
		if err != nil {
			errors = append(errors, fmt.Sprintf("threshold[%d]: %v", i, err))
			continue
		}
		result = append(result, t)
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("threshold parsing errors: %s", strings.Join(errors, "; "))
	}

	return result, nil
}

func isValidMetric(metric string) bool {
	valid := []string{"task_duration", "wall_duration", "wait_duration", "task_failed", "tasks"}
	for _, v := range valid {
		if metric == v {
			return true
		}
	}
	return false
}

func isValidAggregate(aggregate string) bool {
	valid := []string{"p50", "p90", "p99", "avg", "mean", "min", "max", "sum", "total", "rate", "count"}
	for _, v := range valid {
		if aggregate == v {
			return true
		}
	}
	return false
}

func isValidOperator(operator string) bool {
	valid := []string{"<", "<=", ">", ">=", "=="}
	for _, v := range valid {
		if operator == v {
			return true
		}
	}
	return false
}

func extractMetricValue(t Threshold, summary metrics.Summary) (float64, error) {
	switch t.Metric {
	case "task_duration":
		return extractTaskDuration(t.Aggregate, summary)
	case "wall_duration":
		if t.Aggregate != "total" {
			return 0, fmt.Errorf("unsupported aggregate %q for wall_duration (use 'total')", t.Aggregate)
		}
		return summary.WallMs, nil
	case "wait_duration":
		if t.Aggregate != "sum" {
			return 0, fmt.Errorf("unsupported aggregate %q for wait_duration (use 'sum')", t.Aggregate)
		}
		return summary.WaitSumMs, nil
	case "task_failed":
		return extractFailureMetric(t.Aggregate, summary)
	case "tasks":
		return extractTaskMetric(t.Aggregate, summary)
	default:
		return 0, fmt.Errorf("unknown metric: %s", t.Metric)
	}
}

func extractTaskDuration(aggregate string, summary metrics.Summary) (float64, error) {
	switch aggregate {
	case "p50":
		return summary.P50Ms, nil
	case "p90":
		return summary.P90Ms, nil
	case "p99":
		return summary.P99Ms, nil
	case "avg", "mean":
		return summary.MeanMs, nil
	case "min":
		return summary.MinMs, nil
	case "max":
		return summary.MaxMs, nil
	case "sum":
		return summary.SumMs, nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for task_duration", aggregate)
	}
}

func extractFailureMetric(aggregate string, summary metrics.Summary) (float64, error) {
	switch aggregate {
	case "count":
		return float64(summary.Failures), nil
	case "rate":
		if summary.Tasks == 0 {
			return 0, nil
		}
		return float64(summary.Failures) / float64(summary.Tasks), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for task_failed (use 'count' or 'rate')", aggregate)
	}
}

func extractTaskMetric(aggregate string, summary metrics.Summary) (float64, error) {
	switch aggregate {
	case "count":
		return float64(summary.Tasks), nil
	case "rate":
		if summary.Wall <= 0 {
			return 0, nil
		}
		return float64(summary.Tasks) / summary.Wall.Seconds(), nil
	default:
		return 0, fmt.Errorf("unsupported aggregate %q for tasks (use 'count' or 'rate')", aggregate)
	}
}

func compareValues(actual float64, operator string, expected float64) bool {
	// Handle floating point comparison with small epsilon
	epsilon := 1e-9

	switch operator {
	case "<":
		return actual < expected
	case "<=":
		return actual <= expected || math.Abs(actual-expected) < epsilon
	case ">":
		return actual > expected
	case ">=":
		return actual >= expected || math.Abs(actual-expected) < epsilon
	case "==":
		return math.Abs(actual-expected) < epsilon
	default:
		return false
	}
}
