// Package workload provides the unit of work executed inside each task's
// protected section.
package workload

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDuration is how long one unit of work takes unless configured.
const DefaultDuration = 10 * time.Millisecond

const (
	KindSleep = "sleep"
	KindSpin  = "spin"
)

// Func is a single unit of protected work.
type Func func() error

// Sleep blocks the calling goroutine for d.
func Sleep(d time.Duration) Func {
	return func() error {
		time.Sleep(d)
		return nil
	}
}

// Spin keeps the calling goroutine busy on the CPU for d.
func Spin(d time.Duration) Func {
	return func() error {
		deadline := time.Now().Add(d)
		for time.Now().Before(deadline) {
		}
		return nil
	}
}

// New returns the work unit registered under kind.
func New(kind string, d time.Duration) (Func, error) {
	if d < 0 {
		return nil, fmt.Errorf("work duration must be >= 0, got %s", d)
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSleep:
		return Sleep(d), nil
	case KindSpin:
		return Spin(d), nil
	default:
		return nil, fmt.Errorf("unknown workload: %q", kind)
	}
}

// Kinds lists the supported workload kinds.
func Kinds() []string {
	return []string{KindSleep, KindSpin}
}
