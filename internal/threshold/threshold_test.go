package threshold

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/torosent/lockbench/internal/metrics"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      Threshold
		wantError bool
	}{
		{
			name:  "valid p99 task duration",
			input: "task_duration:p99 < 50",
			want: Threshold{
				Metric:    "task_duration",
				Aggregate: "p99",
				Operator:  "<",
				Value:     50,
				Raw:       "task_duration:p99 < 50",
			},
		},
		{
			name:  "valid wall duration",
			input: "wall_duration:total < 20000",
			want: Threshold{
				Metric:    "wall_duration",
				Aggregate: "total",
				Operator:  "<",
				Value:     20000,
				Raw:       "wall_duration:total < 20000",
			},
		},
		{
			name:  "valid failure count with ==",
			input: "task_failed:count == 0",
			want: Threshold{
				Metric:    "task_failed",
				Aggregate: "count",
				Operator:  "==",
				Value:     0,
				Raw:       "task_failed:count == 0",
			},
		},
		{
			name:  "valid failure rate",
			input: "task_failed:rate < 0.01",
			want: Threshold{
				Metric:    "task_failed",
				Aggregate: "rate",
				Operator:  "<",
				Value:     0.01,
				Raw:       "task_failed:rate < 0.01",
			},
		},
		{
			name:  "surrounding whitespace and tight operator",
			input: "  tasks:rate>=100  ",
			want: Threshold{
				Metric:    "tasks",
				Aggregate: "rate",
				Operator:  ">=",
				Value:     100,
				Raw:       "tasks:rate>=100",
			},
		},
		{
			name:      "empty string",
			input:     "",
			wantError: true,
		},
		{
			name:      "invalid format - missing operator",
			input:     "task_duration:p99 50",
			wantError: true,
		},
		{
			name:      "invalid metric",
			input:     "http_req_duration:p99 < 50",
			wantError: true,
		},
		{
			name:      "invalid aggregate",
			input:     "task_duration:p95 < 50",
			wantError: true,
		},
		{
			name:      "invalid operator",
			input:     "task_duration:p99 << 50",
			wantError: true,
		},
		{
			name:      "invalid value - not a number",
			input:     "task_duration:p99 < abc",
			wantError: true,
		},
		{
			name:      "invalid value - two dots",
			input:     "task_duration:p99 < 1.2.3",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("Parse() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseMultiple(t *testing.T) {
	tests := []struct {
		name      string
		input     []string
		wantCount int
		wantError bool
	}{
		{
			name: "multiple valid thresholds",
			input: []string{
				"task_duration:p99 < 50",
				"wall_duration:total < 20000",
				"task_failed:count == 0",
			},
			wantCount: 3,
		},
		{
			name:      "empty slice",
			input:     []string{},
			wantCount: 0,
		},
		{
			name: "one valid, one invalid",
			input: []string{
				"task_duration:p99 < 50",
				"invalid threshold",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMultiple(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ParseMultiple() error = %v, wantError %v", err, tt.wantError)
				return
			}
			if !tt.wantError && len(got) != tt.wantCount {
				t.Errorf("ParseMultiple() returned %d thresholds, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestParseMultipleReportsIndex(t *testing.T) {
	_, err := ParseMultiple([]string{"task_duration:p99 < 50", "bogus"})
	if err == nil || !strings.Contains(err.Error(), "threshold[1]") {
		t.Fatalf("expected error naming threshold[1], got %v", err)
	}
}

func sampleSummary() metrics.Summary {
	return metrics.Summary{
		Strategy:  "sync.Mutex (Lock/Unlock)",
		Tasks:     1000,
		Failures:  20,
		Wall:      10 * time.Second,
		WallMs:    10000,
		SumMs:     5_005_000,
		MinMs:     10,
		MaxMs:     10010,
		MeanMs:    5005,
		P50Ms:     5000,
		P90Ms:     9000,
		P99Ms:     9900,
		WaitSumMs: 4_995_000,
	}
}

func TestEvaluator(t *testing.T) {
	summary := sampleSummary()

	tests := []struct {
		name       string
		thresholds []string
		wantPass   []bool
	}{
		{
			name: "all thresholds pass",
			thresholds: []string{
				"task_duration:p99 < 10000",
				"task_failed:rate < 0.05",
				"tasks:rate > 50",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "some thresholds fail",
			thresholds: []string{
				"task_duration:p99 < 50",
				"task_failed:count == 0",
				"wall_duration:total < 20000",
			},
			wantPass: []bool{false, false, true},
		},
		{
			name: "percentiles",
			thresholds: []string{
				"task_duration:p50 <= 5000",
				"task_duration:p90 < 9500",
				"task_duration:p99 >= 9900",
			},
			wantPass: []bool{true, true, true},
		},
		{
			name: "avg min max sum",
			thresholds: []string{
				"task_duration:avg < 6000",
				"task_duration:max < 11000",
				"task_duration:min > 5",
				"task_duration:sum > 5000000",
			},
			wantPass: []bool{true, true, true, true},
		},
		{
			name: "wait duration",
			thresholds: []string{
				"wait_duration:sum < 1000",
			},
			wantPass: []bool{false},
		},
		{
			name: "aggregate not valid for metric",
			thresholds: []string{
				"wall_duration:p99 < 10",
			},
			wantPass: []bool{false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thresholds, err := ParseMultiple(tt.thresholds)
			if err != nil {
				t.Fatalf("ParseMultiple() error = %v", err)
			}

			evaluator := NewEvaluator(thresholds)
			results := evaluator.Evaluate(summary)

			if len(results) != len(tt.wantPass) {
				t.Fatalf("got %d results, want %d", len(results), len(tt.wantPass))
			}

			for i, result := range results {
				if result.Pass != tt.wantPass[i] {
					t.Errorf("threshold[%d] %q: got pass=%v, want %v (actual=%.2f)",
						i, result.Threshold.Raw, result.Pass, tt.wantPass[i], result.Actual)
				}
				if result.Strategy != summary.Strategy {
					t.Errorf("threshold[%d]: strategy = %q, want %q", i, result.Strategy, summary.Strategy)
				}
			}
		})
	}
}

func TestEvaluatorNoThresholds(t *testing.T) {
	if results := NewEvaluator(nil).Evaluate(sampleSummary()); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestEvaluatorMessages(t *testing.T) {
	thresholds, err := ParseMultiple([]string{"task_failed:count == 20", "task_failed:count == 0"})
	if err != nil {
		t.Fatalf("ParseMultiple() error = %v", err)
	}
	results := NewEvaluator(thresholds).Evaluate(sampleSummary())
	if !strings.HasPrefix(results[0].Message, "✓") {
		t.Errorf("expected passing message, got %q", results[0].Message)
	}
	if !strings.HasPrefix(results[1].Message, "✗") {
		t.Errorf("expected failing message, got %q", results[1].Message)
	}

	failed := Failed(results)
	if len(failed) != 1 || failed[0].Threshold.Raw != "task_failed:count == 0" {
		t.Fatalf("Failed() = %+v", failed)
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name     string
		actual   float64
		operator string
		expected float64
		want     bool
	}{
		{"less than true", 50, "<", 100, true},
		{"less than false", 100, "<", 50, false},
		{"less than equal", 100, "<", 100, false},
		{"less than or equal true", 50, "<=", 100, true},
		{"less than or equal equal", 100, "<=", 100, true},
		{"less than or equal false", 150, "<=", 100, false},
		{"greater than true", 150, ">", 100, true},
		{"greater than false", 50, ">", 100, false},
		{"greater than equal", 100, ">", 100, false},
		{"greater than or equal true", 150, ">=", 100, true},
		{"greater than or equal equal", 100, ">=", 100, true},
		{"greater than or equal false", 50, ">=", 100, false},
		{"equal true", 100, "==", 100, true},
		{"equal false", 100, "==", 101, false},
		{"equal with floating point precision", 100.0000000001, "==", 100, true},
		{"unknown operator", 1, "!=", 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compareValues(tt.actual, tt.operator, tt.expected)
			if got != tt.want {
				t.Errorf("compareValues(%.2f, %s, %.2f) = %v, want %v",
					tt.actual, tt.operator, tt.expected, got, tt.want)
			}
		})
	}
}

func TestExtractMetricValue(t *testing.T) {
	summary := sampleSummary()

	tests := []struct {
		name      string
		threshold Threshold
		want      float64
		wantError bool
	}{
		{"task_duration p50", Threshold{Metric: "task_duration", Aggregate: "p50"}, 5000, false},
		{"task_duration p90", Threshold{Metric: "task_duration", Aggregate: "p90"}, 9000, false},
		{"task_duration p99", Threshold{Metric: "task_duration", Aggregate: "p99"}, 9900, false},
		{"task_duration avg", Threshold{Metric: "task_duration", Aggregate: "avg"}, 5005, false},
		{"task_duration mean", Threshold{Metric: "task_duration", Aggregate: "mean"}, 5005, false},
		{"task_duration min", Threshold{Metric: "task_duration", Aggregate: "min"}, 10, false},
		{"task_duration max", Threshold{Metric: "task_duration", Aggregate: "max"}, 10010, false},
		{"task_duration sum", Threshold{Metric: "task_duration", Aggregate: "sum"}, 5_005_000, false},
		{"wall_duration total", Threshold{Metric: "wall_duration", Aggregate: "total"}, 10000, false},
		{"wait_duration sum", Threshold{Metric: "wait_duration", Aggregate: "sum"}, 4_995_000, false},
		{"task_failed rate", Threshold{Metric: "task_failed", Aggregate: "rate"}, 0.02, false},
		{"task_failed count", Threshold{Metric: "task_failed", Aggregate: "count"}, 20, false},
		{"tasks count", Threshold{Metric: "tasks", Aggregate: "count"}, 1000, false},
		{"tasks rate", Threshold{Metric: "tasks", Aggregate: "rate"}, 100, false},
		{"unsupported metric", Threshold{Metric: "invalid_metric", Aggregate: "p99"}, 0, true},
		{"unsupported aggregate for task_failed", Threshold{Metric: "task_failed", Aggregate: "p99"}, 0, true},
		{"unsupported aggregate for wall_duration", Threshold{Metric: "wall_duration", Aggregate: "sum"}, 0, true},
		{"unsupported aggregate for task_duration", Threshold{Metric: "task_duration", Aggregate: "total"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractMetricValue(tt.threshold, summary)
			if (err != nil) != tt.wantError {
				t.Fatalf("extractMetricValue() error = %v, wantError %v", err, tt.wantError)
			}
			if !tt.wantError && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("extractMetricValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractRatesWithZeroDenominator(t *testing.T) {
	empty := metrics.Summary{}
	for _, th := range []Threshold{
		{Metric: "task_failed", Aggregate: "rate"},
		{Metric: "tasks", Aggregate: "rate"},
	} {
		got, err := extractMetricValue(th, empty)
		if err != nil || got != 0 {
			t.Errorf("%s:%s = %v, %v; want 0, nil", th.Metric, th.Aggregate, got, err)
		}
	}
}
