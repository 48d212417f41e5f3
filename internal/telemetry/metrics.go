package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for lint operations.
var (
	tracer = otel.Tracer("glsllint.lint")
	meter  = otel.Meter("glsllint.lint")
)

// Metrics for lint operations.
var (
	lintLatency      metric.Float64Histogram
	lintTotal        metric.Int64Counter
	diagnosticsFound metric.Int64Histogram
	errorsFound      metric.Int64Counter
	warningsFound    metric.Int64Counter
	expansionsTotal  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"glsllint_lint_duration_seconds",
			metric.WithDescription("Duration of shader lint operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"glsllint_lint_total",
			metric.WithDescription("Total number of shader lint operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		diagnosticsFound, err = meter.Int64Histogram(
			"glsllint_diagnostics_found",
			metric.WithDescription("Number of diagnostics per lint operation"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		errorsFound, err = meter.Int64Counter(
			"glsllint_errors_found_total",
			metric.WithDescription("Total number of error diagnostics"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		warningsFound, err = meter.Int64Counter(
			"glsllint_warnings_found_total",
			metric.WithDescription("Total number of warning diagnostics"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		expansionsTotal, err = meter.Int64Counter(
			"glsllint_expansions_total",
			metric.WithDescription("Total number of glslify expansions"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// StartLintSpan creates a span for linting one shader file.
func StartLintSpan(ctx context.Context, stage, filePath string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Session.Lint",
		trace.WithAttributes(
			attribute.String("lint.stage", stage),
			attribute.String("lint.file_path", filePath),
		),
	)
}

// StartSpan creates a child span for one pipeline step.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// SetLintSpanResult sets the result attributes on a lint span.
func SetLintSpanResult(span trace.Span, errorCount, warningCount, units int, linked bool) {
	span.SetAttributes(
		attribute.Int("lint.error_count", errorCount),
		attribute.Int("lint.warning_count", warningCount),
		attribute.Int("lint.units", units),
		attribute.Bool("lint.linked", linked),
	)
}

// RecordLint records metrics for one lint operation.
func RecordLint(ctx context.Context, stage string, duration time.Duration, errorCount, warningCount int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.Bool("success", success),
	)

	lintLatency.Record(ctx, duration.Seconds(), attrs)
	lintTotal.Add(ctx, 1, attrs)

	if success {
		stageAttr := metric.WithAttributes(attribute.String("stage", stage))
		diagnosticsFound.Record(ctx, int64(errorCount+warningCount), stageAttr)
		errorsFound.Add(ctx, int64(errorCount), stageAttr)
		warningsFound.Add(ctx, int64(warningCount), stageAttr)
	}
}

// RecordExpansion counts one glslify expansion.
func RecordExpansion(ctx context.Context, success, mapped bool) {
	if err := initMetrics(); err != nil {
		return
	}

	expansionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", success),
		attribute.Bool("source_map", mapped),
	))
}
