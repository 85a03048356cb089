package metrics

import (
	"errors"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/lockbench/internal/runner"
)

// ErrNoSamples is returned when a result without samples is summarized.
// A zero-task benchmark is a caller error, not an empty report.
var ErrNoSamples = errors.New("no samples to summarize")

// Summary is the per-strategy benchmark result.
type Summary struct {
	RunID    string `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Strategy string `json:"strategy" yaml:"strategy"`
	Tasks    int    `json:"tasks" yaml:"tasks"`
	Failures int    `json:"failures" yaml:"failures"`
	Skipped  int    `json:"skipped" yaml:"skipped"`

	Wall    time.Duration `json:"-" yaml:"-"`
	Sum     time.Duration `json:"-" yaml:"-"`
	Min     time.Duration `json:"-" yaml:"-"`
	Max     time.Duration `json:"-" yaml:"-"`
	Mean    time.Duration `json:"-" yaml:"-"`
	P50     time.Duration `json:"-" yaml:"-"`
	P90     time.Duration `json:"-" yaml:"-"`
	P99     time.Duration `json:"-" yaml:"-"`
	WaitSum time.Duration `json:"-" yaml:"-"`

	// Report-friendly millisecond fields.
	WallMs    float64 `json:"wall_ms" yaml:"wall_ms"`
	SumMs     float64 `json:"sum_ms" yaml:"sum_ms"`
	MinMs     float64 `json:"min_ms" yaml:"min_ms"`
	MaxMs     float64 `json:"max_ms" yaml:"max_ms"`
	MeanMs    float64 `json:"mean_ms" yaml:"mean_ms"`
	P50Ms     float64 `json:"p50_ms" yaml:"p50_ms"`
	P90Ms     float64 `json:"p90_ms" yaml:"p90_ms"`
	P99Ms     float64 `json:"p99_ms" yaml:"p99_ms"`
	WaitSumMs float64 `json:"wait_sum_ms" yaml:"wait_sum_ms"`
}

// newHistogram tracks durations from 1µs up to one hour with 3 significant figures.
func newHistogram() *hdrhistogram.Histogram {
	return hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)
}

func recordDuration(h *hdrhistogram.Histogram, d time.Duration) {
	us := d.Microseconds()
	if us < h.LowestTrackableValue() {
		us = h.LowestTrackableValue()
	}
	if us > h.HighestTrackableValue() {
		us = h.HighestTrackableValue()
	}
	_ = h.RecordValue(us)
}

func quantile(h *hdrhistogram.Histogram, q float64) time.Duration {
	return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
}

// Summarize reduces a runner result to a Summary.
//
// Sum, Min and Max are exact. Percentiles come from an HdrHistogram and are
// accurate to three significant figures. Skipped tasks count towards Tasks
// and Failures but never did any work, so they are left out of the timing
// fields.
func Summarize(res runner.Result) (Summary, error) {
	if len(res.Samples) == 0 {
		return Summary{}, ErrNoSamples
	}

	s := Summary{
		Strategy: res.Strategy,
		Tasks:    len(res.Samples),
		Wall:     res.Wall,
	}

	hist := newHistogram()
	var measured int64
	for _, sample := range res.Samples {
		if sample.Err != nil {
			s.Failures++
		}
		if sample.Skipped {
			s.Skipped++
			continue
		}
		if measured == 0 || sample.Elapsed < s.Min {
			s.Min = sample.Elapsed
		}
		if sample.Elapsed > s.Max {
			s.Max = sample.Elapsed
		}
		s.Sum += sample.Elapsed
		s.WaitSum += sample.Wait
		recordDuration(hist, sample.Elapsed)
		measured++
	}

	if measured > 0 {
		s.Mean = time.Duration(int64(s.Sum) / measured)
		s.P50 = quantile(hist, 50)
		s.P90 = quantile(hist, 90)
		s.P99 = quantile(hist, 99)
	}

	s.WallMs = toMs(s.Wall)
	s.SumMs = toMs(s.Sum)
	s.MinMs = toMs(s.Min)
	s.MaxMs = toMs(s.Max)
	s.MeanMs = toMs(s.Mean)
	s.P50Ms = toMs(s.P50)
	s.P90Ms = toMs(s.P90)
	s.P99Ms = toMs(s.P99)
	s.WaitSumMs = toMs(s.WaitSum)
	return s, nil
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
