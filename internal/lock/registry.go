package lock

import (
	"fmt"
	"sort"
	"strings"
)

const (
	KeyReadLock  = "rwmutex-read"
	KeyWriteLock = "rwmutex-write"
	KeyMonitor   = "monitor"
	KeyScoped    = "scoped"
	KeyChannel   = "channel"
)

var factories = map[string]func() Strategy{
	KeyReadLock:  func() Strategy { return NewReadLock() },
	KeyWriteLock: func() Strategy { return NewWriteLock() },
	KeyMonitor:   func() Strategy { return NewMonitor() },
	KeyScoped:    func() Strategy { return NewScoped() },
	KeyChannel:   func() Strategy { return NewChannel() },
}

// New returns a fresh strategy for key. Every call allocates a new primitive,
// so instances are never shared between benchmark runs.
func New(key string) (Strategy, error) {
	factory, ok := factories[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %q (supported: %s)", key, strings.Join(Keys(), ", "))
	}
	return factory(), nil
}

// Keys lists every registered strategy key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(factories))
	for k := range factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultKeys returns the three canonical strategies in reporting order.
func DefaultKeys() []string {
	return []string{KeyReadLock, KeyMonitor, KeyScoped}
}
