package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/torosent/lockbench/internal/metrics"
)

// ProgressReporter displays real-time progress updates.
type ProgressReporter struct {
	tracker  *metrics.Tracker
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(tracker *metrics.Tracker, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		tracker:  tracker,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates and prints one final line.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
		fmt.Fprintln(p.writer, progressLine(p.tracker.Snapshot()))
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			fmt.Fprint(p.writer, progressLine(p.tracker.Snapshot()))
		case <-p.done:
			return
		}
	}
}

func progressLine(snap metrics.Snapshot) string {
	pct := 0.0
	if snap.Tasks > 0 {
		pct = float64(snap.Completed) / float64(snap.Tasks) * 100
	}
	return fmt.Sprintf("\r%s | Tasks: %d/%d (%.0f%%) | Failed: %d | Tasks/sec: %.1f | P99: %s",
		snap.Strategy, snap.Completed, snap.Tasks, pct, snap.Failed, snap.TasksPerSec, snap.P99)
}
