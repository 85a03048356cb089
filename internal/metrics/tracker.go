package metrics

import (
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/atomic"

	"github.com/torosent/lockbench/internal/runner"
)

// Tracker follows the strategy that is currently running so that progress
// reporters and the dashboard can display it while tasks settle.
type Tracker struct {
	strategy  atomic.String
	tasks     atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64

	mu    sync.Mutex
	hist  *hdrhistogram.Histogram
	start time.Time
	max   time.Duration
	sum   time.Duration
	done  []Summary
}

// Snapshot is a point-in-time view of the running strategy.
type Snapshot struct {
	Strategy    string
	Tasks       int64
	Completed   int64
	Failed      int64
	Elapsed     time.Duration
	TasksPerSec float64
	Mean        time.Duration
	P50         time.Duration
	P99         time.Duration
	Max         time.Duration
	Finished    []Summary
}

func NewTracker() *Tracker {
	return &Tracker{hist: newHistogram(), start: time.Now()}
}

// Begin resets the live counters for a new strategy run.
func (t *Tracker) Begin(strategy string, tasks int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hist.Reset()
	t.start = time.Now()
	t.max = 0
	t.sum = 0
	t.strategy.Store(strategy)
	t.tasks.Store(int64(tasks))
	t.completed.Store(0)
	t.failed.Store(0)
}

// Observe records one settled task. It is safe for concurrent use and is
// meant to be passed as a runner.Observer.
func (t *Tracker) Observe(s runner.Sample) {
	t.completed.Inc()
	if s.Err != nil {
		t.failed.Inc()
	}
	if s.Skipped {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	recordDuration(t.hist, s.Elapsed)
	t.sum += s.Elapsed
	if s.Elapsed > t.max {
		t.max = s.Elapsed
	}
}

// Finish stores the summary of a completed strategy.
func (t *Tracker) Finish(s Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = append(t.done, s)
}

// Snapshot returns the current view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Strategy:  t.strategy.Load(),
		Tasks:     t.tasks.Load(),
		Completed: t.completed.Load(),
		Failed:    t.failed.Load(),
		Elapsed:   time.Since(t.start),
		Max:       t.max,
		Finished:  append([]Summary(nil), t.done...),
	}
	if n := t.hist.TotalCount(); n > 0 {
		snap.Mean = time.Duration(int64(t.sum) / n)
		snap.P50 = quantile(t.hist, 50)
		snap.P99 = quantile(t.hist, 99)
	}
	if snap.Elapsed > 0 {
		snap.TasksPerSec = float64(snap.Completed) / snap.Elapsed.Seconds()
	}
	return snap
}
