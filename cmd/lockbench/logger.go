package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	logInterval = 100 * time.Millisecond
	logBurst    = 20
)

// stderrFailureLogger prints task failures with a rate limit. Lines over the
// limit are counted and reported once by Close.
type stderrFailureLogger struct {
	mu         sync.Mutex
	w          io.Writer
	limiter    *rate.Limiter
	suppressed int
}

func newStderrFailureLogger(w io.Writer) *stderrFailureLogger {
	return newThrottledLogger(w, rate.NewLimiter(rate.Every(logInterval), logBurst))
}

func newThrottledLogger(w io.Writer, limiter *rate.Limiter) *stderrFailureLogger {
	return &stderrFailureLogger{w: w, limiter: limiter}
}

func (l *stderrFailureLogger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.limiter.Allow() {
		l.suppressed++
		return
	}
	fmt.Fprintf(l.w, "[lockbench] task failed: %v\n", err)
}

// Close reports how many failures were not printed.
func (l *stderrFailureLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.suppressed > 0 {
		fmt.Fprintf(l.w, "[lockbench] %d more task failures not shown\n", l.suppressed)
		l.suppressed = 0
	}
}

func logf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "[lockbench] "+format+"\n", args...)
}
