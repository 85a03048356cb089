// Package lock defines the locking strategies compared by lockbench.
//
// Every strategy exposes the same three steps (Acquire, Execute, Release) but
// the variants deliberately disagree about which step actually provides
// mutual exclusion:
//
//   - [ReadLock] takes the shared side of a sync.RWMutex in Acquire, so
//     concurrent tasks are never serialized against each other.
//   - [Monitor] takes a sync.Mutex in Acquire and drops it in Release.
//   - [Scoped] does nothing in Acquire/Release and holds a sync.Mutex only for
//     the duration of Execute, releasing it with defer.
//
// The divergence is what the benchmark measures; do not unify it.
package lock

// Strategy is one interchangeable mutual-exclusion behavior.
//
// Release must be called exactly once for every Acquire, including when
// Execute returns an error or panics.
type Strategy interface {
	Name() string
	Acquire()
	Execute(work func() error) error
	Release()
}

// IdleReporter reports whether the strategy's primitive is currently free.
// It never blocks.
type IdleReporter interface {
	Idle() bool
}

// IsIdle returns true if s implements IdleReporter and its primitive is free.
func IsIdle(s Strategy) bool {
	p, ok := s.(IdleReporter)
	if !ok {
		return false
	}
	return p.Idle()
}
