package runner

import (
	"fmt"
	"time"

	"github.com/torosent/lockbench/internal/workload"
)

// DefaultTasks is the task population used when none is configured.
const DefaultTasks = 1000

// Observer receives each task's sample as soon as the task settles.
// It is called concurrently from task goroutines.
type Observer func(Sample)

// Options configure the Runner.
type Options struct {
	Tasks    int           // number of concurrent tasks (must be > 0)
	Work     workload.Func // protected work unit (defaults to a 10ms sleep)
	Deadline time.Duration // overall time limit (0 means no limit)
	Observer Observer      // optional per-task hook
}

func (o *Options) normalize() {
	if o.Work == nil {
		o.Work = workload.Sleep(workload.DefaultDuration)
	}
	if o.Deadline < 0 {
		o.Deadline = 0
	}
}

func (o Options) validate() error {
	if o.Tasks <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTaskCount, o.Tasks)
	}
	return nil
}
