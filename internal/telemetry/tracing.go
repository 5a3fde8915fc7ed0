package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"taskflow/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ShutdownFunc flushes pending spans and stops the provider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitTracing installs the global tracer provider for exporter. With
// ExporterNone the global no-op provider is left in place.
func InitTracing(exporter, service, version string) (ShutdownFunc, error) {
	return InitTracingWriter(os.Stdout, exporter, service, version)
}

// InitTracingWriter is InitTracing with the stdout exporter writing to w.
func InitTracingWriter(w io.Writer, exporter, service, version string) (ShutdownFunc, error) {
	switch exporter {
	case "", ExporterNone:
		return noopShutdown, nil
	case ExporterStdout:
	default:
		return noopShutdown, fmt.Errorf("unknown trace exporter %q", exporter)
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return noopShutdown, fmt.Errorf("create stdout exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", service),
			attribute.String("service.version", version),
		)),
	)
	otel.SetTracerProvider(tp)

	logger.Info("tracing enabled", "exporter", exporter)
	return tp.Shutdown, nil
}
