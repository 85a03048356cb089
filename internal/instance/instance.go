// Package instance keeps two lockbench processes from benchmarking on the
// same host at once. Concurrent runs compete for the scheduler and skew each
// other's wall clock.
package instance

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another process holds the lock file.
var ErrAlreadyRunning = errors.New("another lockbench run is in progress")

// Guard is a held single-instance lock.
type Guard struct {
	lock *flock.Flock
}

// Acquire takes the advisory lock at path without blocking.
func Acquire(path string) (*Guard, error) {
	if path == "" {
		return nil, fmt.Errorf("instance: lock file path is empty")
	}
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("instance: lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, path)
	}
	return &Guard{lock: fl}, nil
}

// Path returns the lock file path.
func (g *Guard) Path() string {
	if g == nil || g.lock == nil {
		return ""
	}
	return g.lock.Path()
}

// Release drops the lock. It is safe to call more than once.
func (g *Guard) Release() error {
	if g == nil || g.lock == nil {
		return nil
	}
	if err := g.lock.Unlock(); err != nil {
		return fmt.Errorf("instance: unlock %s: %w", g.lock.Path(), err)
	}
	return nil
}
