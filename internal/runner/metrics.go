package runner

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/R167/lintbridge/internal/runner"

var (
	lintLatency  metric.Float64Histogram
	lintTotal    metric.Int64Counter
	lintTimeouts metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics creates the instruments on first use. Safe to call repeatedly.
func initMetrics() error {
	metricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)

		var err error
		lintLatency, err = meter.Float64Histogram(
			"lintbridge_lint_duration_seconds",
			metric.WithDescription("Duration of arduino-lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"lintbridge_lint_total",
			metric.WithDescription("Total number of arduino-lint runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTimeouts, err = meter.Int64Counter(
			"lintbridge_lint_timeouts_total",
			metric.WithDescription("Number of arduino-lint runs killed by the timeout"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// tracer is looked up per call so a provider installed after package init
// still receives spans.
func tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func startLintSpan(ctx context.Context, req Request) (context.Context, trace.Span) {
	return tracer().Start(ctx, "Runner.LintProject",
		trace.WithAttributes(
			attribute.String("lint.path", req.Path),
			attribute.String("lint.compliance", req.compliance()),
			attribute.String("lint.library_manager", req.LibraryManager),
		),
	)
}

func setLintSpanResult(span trace.Span, o *Outcome, timedOut bool) {
	span.SetAttributes(
		attribute.Bool("lint.success", o.Success),
		attribute.Int("lint.returncode", o.ReturnCode),
		attribute.Bool("lint.completed", o.Completed()),
		attribute.Bool("lint.has_findings", o.HasFindings()),
		attribute.Bool("lint.timed_out", timedOut),
	)
	if o.Error != "" {
		span.SetStatus(codes.Error, o.Error)
	}
}

func recordLintMetrics(ctx context.Context, duration time.Duration, o *Outcome, timedOut bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.Bool("success", o.Success),
		attribute.Bool("completed", o.Completed()),
	)
	lintLatency.Record(ctx, duration.Seconds(), attrs)
	lintTotal.Add(ctx, 1, attrs)
	if timedOut {
		lintTimeouts.Add(ctx, 1)
	}
}
