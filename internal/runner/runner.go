package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/torosent/lockbench/internal/lock"
)

// Sample is the timing record of a single task.
type Sample struct {
	Task    int           // index within the run
	Elapsed time.Duration // start of Acquire to end of Release
	Wait    time.Duration // time spent inside Acquire
	Skipped bool          // the run was aborted before this task ran its work
	Err     error         // work failure, panic, or abort cause
}

// Result captures one strategy's raw measurements.
type Result struct {
	Strategy string
	Wall     time.Duration // start-all to all-finished
	Samples  []Sample
}

// Failures counts samples that carry an error, including skipped ones.
func (r Result) Failures() int {
	var n int
	for _, s := range r.Samples {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Skipped counts tasks that never acquired the lock.
func (r Result) Skipped() int {
	var n int
	for _, s := range r.Samples {
		if s.Skipped {
			n++
		}
	}
	return n
}

// Runner drives a fixed population of concurrent tasks against one strategy.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// Tasks returns the configured task population.
func (r *Runner) Tasks() int {
	return r.opt.Tasks
}

// Run executes the workload against s and blocks until every task settles.
//
// All tasks are spawned first and parked on a barrier; the wall clock starts
// when the barrier opens. The returned Result always holds exactly one sample
// per task. When a task fails the first failure is returned as a *TaskError
// alongside the full Result. If the context also expired, the error matches
// both *TaskError and ErrAborted.
func (r *Runner) Run(ctx context.Context, s lock.Strategy) (Result, error) {
	if err := r.opt.validate(); err != nil {
		return Result{}, err
	}
	if s == nil {
		return Result{}, ErrNoStrategy
	}

	if r.opt.Deadline > 0 {
		deadlineCtx, cancel := context.WithTimeout(ctx, r.opt.Deadline)
		ctx = deadlineCtx
		defer cancel()
	}

	n := r.opt.Tasks
	samples := make([]Sample, n)
	start := make(chan struct{})

	var ready sync.WaitGroup
	ready.Add(n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			ready.Done()
			<-start

			sample := r.runTask(ctx, i, s)
			samples[i] = sample
			if r.opt.Observer != nil {
				r.opt.Observer(sample)
			}
			if sample.Err != nil && !sample.Skipped {
				return &TaskError{Task: i, Err: sample.Err}
			}
			return nil
		})
	}

	ready.Wait()
	begin := time.Now()
	close(start)
	err := g.Wait()
	wall := time.Since(begin)

	result := Result{
		Strategy: s.Name(),
		Wall:     wall,
		Samples:  samples,
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		abortErr := fmt.Errorf("%w after %s: %d of %d tasks skipped: %w",
			ErrAborted, wall.Round(time.Millisecond), result.Skipped(), n, ctxErr)
		if err != nil {
			return result, errors.Join(err, abortErr)
		}
		return result, abortErr
	}
	return result, err
}

func (r *Runner) runTask(ctx context.Context, idx int, s lock.Strategy) Sample {
	sample := Sample{Task: idx}
	if err := ctx.Err(); err != nil {
		sample.Skipped = true
		sample.Err = err
		return sample
	}

	start := time.Now()
	sample.Wait, sample.Skipped, sample.Err = r.guarded(ctx, s)
	sample.Elapsed = time.Since(start)
	return sample
}

// guarded runs Acquire, Execute and Release. Release runs on every exit path,
// including a panic in the work unit. The context is checked again once the
// protected section is entered, so tasks that only get the lock after an abort
// skip their work and hand the lock straight back.
func (r *Runner) guarded(ctx context.Context, s lock.Strategy) (wait time.Duration, skipped bool, err error) {
	work := func() error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			skipped = true
			return ctxErr
		}
		return r.opt.Work()
	}

	start := time.Now()
	s.Acquire()
	wait = time.Since(start)
	defer s.Release()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrWorkPanicked, p)
		}
	}()
	err = s.Execute(work)
	return wait, skipped, err
}
