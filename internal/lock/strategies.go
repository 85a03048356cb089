package lock

import "sync"

// ReadLock takes a read lock in Acquire; Execute is unprotected.
type ReadLock struct {
	mu sync.RWMutex
}

func NewReadLock() *ReadLock { return &ReadLock{} }

func (l *ReadLock) Name() string { return "sync.RWMutex (RLock)" }

func (l *ReadLock) Acquire() { l.mu.RLock() }

func (l *ReadLock) Execute(work func() error) error { return work() }

func (l *ReadLock) Release() { l.mu.RUnlock() }

// Idle reports whether no reader or writer holds the lock.
func (l *ReadLock) Idle() bool {
	if !l.mu.TryLock() {
		return false
	}
	l.mu.Unlock()
	return true
}

// WriteLock takes the exclusive side of a sync.RWMutex in Acquire.
type WriteLock struct {
	mu sync.RWMutex
}

func NewWriteLock() *WriteLock { return &WriteLock{} }

func (l *WriteLock) Name() string { return "sync.RWMutex (Lock)" }

func (l *WriteLock) Acquire() { l.mu.Lock() }

func (l *WriteLock) Execute(work func() error) error { return work() }

func (l *WriteLock) Release() { l.mu.Unlock() }

func (l *WriteLock) Idle() bool {
	if !l.mu.TryLock() {
		return false
	}
	l.mu.Unlock()
	return true
}

// Monitor maps Acquire/Release onto Lock/Unlock of a sync.Mutex.
type Monitor struct {
	mu sync.Mutex
}

func NewMonitor() *Monitor { return &Monitor{} }

func (m *Monitor) Name() string { return "sync.Mutex (Lock/Unlock)" }

func (m *Monitor) Acquire() { m.mu.Lock() }

func (m *Monitor) Execute(work func() error) error { return work() }

func (m *Monitor) Release() { m.mu.Unlock() }

func (m *Monitor) Idle() bool {
	if !m.mu.TryLock() {
		return false
	}
	m.mu.Unlock()
	return true
}

// Scoped holds its mutex only inside Execute.
type Scoped struct {
	mu sync.Mutex
}

func NewScoped() *Scoped { return &Scoped{} }

func (s *Scoped) Name() string { return "sync.Mutex (scoped defer)" }

func (s *Scoped) Acquire() {}

// Execute runs work with the mutex held. The deferred unlock also runs when
// work panics.
func (s *Scoped) Execute(work func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return work()
}

func (s *Scoped) Release() {}

func (s *Scoped) Idle() bool {
	if !s.mu.TryLock() {
		return false
	}
	s.mu.Unlock()
	return true
}

// Channel uses a one-slot channel as a binary semaphore scoped to Execute.
type Channel struct {
	sem chan struct{}
}

func NewChannel() *Channel {
	return &Channel{sem: make(chan struct{}, 1)}
}

func (c *Channel) Name() string { return "chan struct{} (semaphore)" }

func (c *Channel) Acquire() {}

func (c *Channel) Execute(work func() error) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()
	return work()
}

func (c *Channel) Release() {}

func (c *Channel) Idle() bool {
	return len(c.sem) == 0
}
