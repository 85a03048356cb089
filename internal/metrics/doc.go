// Package metrics turns raw benchmark samples into statistics.
//
// # Summaries
//
// [Summarize] is the aggregation step that runs after every task of a
// strategy has settled:
//
//	res, err := r.Run(ctx, strategy)
//	summary, err := metrics.Summarize(res)
//
// It is a pure function. An empty result is rejected with [ErrNoSamples].
//
// # Live Tracking
//
// A [Tracker] follows the strategy currently running. Pass
// [Tracker.Observe] as the runner's observer and read [Tracker.Snapshot] from
// progress reporters or the dashboard:
//
//	tracker := metrics.NewTracker()
//	tracker.Begin(strategy.Name(), tasks)
//	r := runner.New(runner.Options{Tasks: tasks, Observer: tracker.Observe})
//
// Percentiles in both paths come from an HdrHistogram with microsecond
// resolution.
package metrics
