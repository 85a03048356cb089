package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/lockbench/internal/metrics"
)

// StartRunSpan starts the root span covering every strategy of one invocation.
func StartRunSpan(ctx context.Context, tracer trace.Tracer, runID string, tasks int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "lockbench run",
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("lockbench.run_id", runID),
		attribute.Int("lockbench.tasks", tasks),
	)
	return ctx, span
}

// StartStrategySpan starts a child span for one strategy run.
func StartStrategySpan(ctx context.Context, tracer trace.Tracer, key string, tasks int) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "benchmark "+key,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("lockbench.strategy.key", key),
		attribute.Int("lockbench.tasks", tasks),
	)
	return ctx, span
}

// SummaryAttributes describes a finished strategy run.
func SummaryAttributes(s metrics.Summary) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("lockbench.strategy.name", s.Strategy),
		attribute.Int("lockbench.failures", s.Failures),
		attribute.Int("lockbench.skipped", s.Skipped),
		attribute.Float64("lockbench.wall_ms", s.WallMs),
		attribute.Float64("lockbench.sum_ms", s.SumMs),
		attribute.Float64("lockbench.min_ms", s.MinMs),
		attribute.Float64("lockbench.max_ms", s.MaxMs),
		attribute.Float64("lockbench.p99_ms", s.P99Ms),
		attribute.Float64("lockbench.wait_sum_ms", s.WaitSumMs),
	}
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
