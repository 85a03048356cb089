// Package publish ships per-strategy summaries to a DogStatsD agent.
package publish

import (
	"fmt"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/statsd"

	"github.com/torosent/lockbench/internal/metrics"
)

const namespace = "lockbench."

// Client is the subset of the DogStatsD client used here.
type Client interface {
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Close() error
}

// Publisher sends one metric set per finished strategy.
type Publisher struct {
	client Client
	tags   []string
}

// New dials a DogStatsD agent at addr. UDP is connectionless, so an absent
// agent does not fail here.
func New(addr string, tags ...string) (*Publisher, error) {
	c, err := statsd.New(addr, statsd.WithNamespace(namespace))
	if err != nil {
		return nil, fmt.Errorf("publish: statsd client for %s: %w", addr, err)
	}
	return NewWithClient(c, tags...), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(c Client, tags ...string) *Publisher {
	return &Publisher{client: c, tags: tags}
}

// Publish sends the summary for one strategy. The first error is returned
// after every metric has been attempted.
func (p *Publisher) Publish(runID string, s metrics.Summary) error {
	if p == nil || p.client == nil {
		return nil
	}
	tags := append([]string{
		"strategy:" + tagValue(s.Strategy),
	}, p.tags...)
	if runID != "" {
		tags = append(tags, "run_id:"+runID)
	}

	var first error
	record := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	record(p.client.Timing("wall", s.Wall, tags, 1))
	record(p.client.Timing("task.sum", s.Sum, tags, 1))
	record(p.client.Timing("task.min", s.Min, tags, 1))
	record(p.client.Timing("task.max", s.Max, tags, 1))
	record(p.client.Timing("task.p99", s.P99, tags, 1))
	record(p.client.Timing("wait.sum", s.WaitSum, tags, 1))
	record(p.client.Gauge("tasks", float64(s.Tasks), tags, 1))
	record(p.client.Count("task.failed", int64(s.Failures), tags, 1))
	record(p.client.Count("task.skipped", int64(s.Skipped), tags, 1))

	if first != nil {
		return fmt.Errorf("publish %s: %w", s.Strategy, first)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}

// tagValue turns a display name such as "sync.Mutex (Lock/Unlock)" into a
// DogStatsD-safe tag value.
func tagValue(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
