package metrics_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/torosent/lockbench/internal/metrics"
	"github.com/torosent/lockbench/internal/runner"
)

func TestTrackerSnapshot(t *testing.T) {
	tr := metrics.NewTracker()
	tr.Begin("monitor", 4)

	tr.Observe(runner.Sample{Elapsed: 10 * time.Millisecond})
	tr.Observe(runner.Sample{Elapsed: 30 * time.Millisecond})
	tr.Observe(runner.Sample{Elapsed: 20 * time.Millisecond, Err: errors.New("boom")})

	snap := tr.Snapshot()
	if snap.Strategy != "monitor" {
		t.Errorf("expected strategy monitor, got %q", snap.Strategy)
	}
	if snap.Tasks != 4 || snap.Completed != 3 || snap.Failed != 1 {
		t.Errorf("unexpected counters: tasks=%d completed=%d failed=%d", snap.Tasks, snap.Completed, snap.Failed)
	}
	if snap.Max != 30*time.Millisecond {
		t.Errorf("expected max 30ms, got %s", snap.Max)
	}
	if snap.Mean != 20*time.Millisecond {
		t.Errorf("expected mean 20ms, got %s", snap.Mean)
	}
}

func TestTrackerBeginResets(t *testing.T) {
	tr := metrics.NewTracker()
	tr.Begin("a", 2)
	tr.Observe(runner.Sample{Elapsed: time.Millisecond})
	tr.Finish(metrics.Summary{Strategy: "a"})

	tr.Begin("b", 5)
	snap := tr.Snapshot()
	if snap.Strategy != "b" || snap.Completed != 0 || snap.Max != 0 {
		t.Fatalf("expected fresh counters, got %+v", snap)
	}
	if len(snap.Finished) != 1 || snap.Finished[0].Strategy != "a" {
		t.Fatalf("expected finished summaries to be kept, got %+v", snap.Finished)
	}
}

func TestTrackerSkippedSamples(t *testing.T) {
	tr := metrics.NewTracker()
	tr.Begin("monitor", 1)
	tr.Observe(runner.Sample{Skipped: true, Err: errors.New("deadline")})
	snap := tr.Snapshot()
	if snap.Completed != 1 || snap.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.Mean != 0 {
		t.Fatalf("skipped samples must not feed latency stats, mean = %s", snap.Mean)
	}
}

func TestTrackerConcurrentObserve(t *testing.T) {
	tr := metrics.NewTracker()
	tr.Begin("scoped", 1000)

	var wg sync.WaitGroup
	workers := 10
	perWorker := 100
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				tr.Observe(runner.Sample{Elapsed: time.Millisecond})
			}
		}()
	}
	wg.Wait()

	if got := tr.Snapshot().Completed; got != int64(workers*perWorker) {
		t.Fatalf("expected %d completed, got %d", workers*perWorker, got)
	}
}
