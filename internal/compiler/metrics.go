package compiler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("neurogrid.compiler")
	meter  = otel.Meter("neurogrid.compiler")
)

var (
	runLatency   metric.Float64Histogram
	nodeLatency  metric.Float64Histogram
	nodeOutcomes metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments on first use.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"compile_run_duration_seconds",
			metric.WithDescription("Duration of graph compile runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodeLatency, err = meter.Float64Histogram(
			"compile_node_duration_seconds",
			metric.WithDescription("Time spent compiling each node"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodeOutcomes, err = meter.Int64Counter(
			"compile_node_outcomes_total",
			metric.WithDescription("Settled nodes by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordRun(ctx context.Context, d time.Duration, res *Result, err error) {
	if initMetrics() != nil {
		return
	}
	runLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", err == nil)))
	for outcome, n := range map[string]int{
		"skipped": len(res.Skipped),
		"blocked": len(res.Blocked),
	} {
		if n > 0 {
			nodeOutcomes.Add(ctx, int64(n), metric.WithAttributes(attribute.String("outcome", outcome)))
		}
	}
}

func recordNode(ctx context.Context, label string, d time.Duration, outcome string) {
	if initMetrics() != nil {
		return
	}
	nodeLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("kind", label)))
	nodeOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
