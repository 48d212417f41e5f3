// Package telemetry provides OpenTelemetry tracing and metrics for lint runs.
//
// Instrumentation always goes through the global otel providers, which are
// no-ops until Init installs real ones, so instrumented code pays almost
// nothing when telemetry is off.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ErrUnknownExporter is returned for an exporter name Init does not support.
var ErrUnknownExporter = errors.New("unknown exporter")

// Exporter names.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config controls which exporters Init installs.
type Config struct {
	// ServiceVersion is reported as service.version.
	ServiceVersion string

	// TraceExporter is "stdout" or "none".
	TraceExporter string

	// MetricExporter is "stdout" or "none".
	MetricExporter string

	// Writer receives exported telemetry. Defaults to os.Stderr.
	Writer io.Writer
}

// Init installs global tracer and meter providers according to cfg.
// The returned shutdown flushes and stops them and must be called on exit.
func Init(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	var shutdownFuncs []func(context.Context) error
	shutdown = func(ctx context.Context) error {
		var errs []error
		for _, fn := range shutdownFuncs {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", "glsllint"),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	switch cfg.TraceExporter {
	case "", ExporterNone:
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.TraceExporter)
	}

	switch cfg.MetricExporter {
	case "", ExporterNone:
	case ExporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer), stdoutmetric.WithPrettyPrint())
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("create metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		otel.SetMeterProvider(mp)
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	default:
		_ = shutdown(ctx)
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.MetricExporter)
	}

	return shutdown, nil
}
