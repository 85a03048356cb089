// Package runner provides the benchmark execution engine for lockbench.
//
// A [Runner] drives a fixed population of concurrent tasks against a single
// [lock.Strategy]. Each task performs Acquire, Execute(work) and Release and
// records how long that took.
//
// # Basic Usage
//
//	r := runner.New(runner.Options{
//		Tasks: 1000,
//		Work:  workload.Sleep(10 * time.Millisecond),
//	})
//	result, err := r.Run(ctx, lock.NewMonitor())
//
// # Start Barrier
//
// Every task goroutine is created and parked before any of them is allowed to
// touch the lock. The wall clock in [Result.Wall] covers only the phase from
// opening the barrier until the last task settles, so goroutine creation cost
// is not measured and contention is as high as the scheduler allows.
//
// # Failures
//
// A failing or panicking work unit never prevents Release from running and
// never removes the task from [Result.Samples]. Run waits for every task and
// then returns the first failure as a [*TaskError].
//
// An optional [Options.Deadline] aborts tasks that have not entered their
// protected section yet: they still acquire and release the lock but skip the
// work. Tasks already inside finish normally, so no lock is leaked, and Run
// reports [ErrAborted] once everything has drained.
//
// # Observers
//
// [Options.Observer] sees every sample as soon as its task settles. Use
// [WithLogging] to log failures and [Chain] to combine observers.
package runner
