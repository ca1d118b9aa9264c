// Package telemetry настраивает OpenTelemetry трассировку для сервисов.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Options описывает, куда отправлять трейсы.
type Options struct {
	Writer         io.Writer // для stdout экспортера
	Endpoint       string    // OTLP HTTP collector, например localhost:4318
	ServiceName    string
	ServiceVersion string
	Stdout         bool
}

// ShutdownFunc сбрасывает буферы и останавливает provider
type ShutdownFunc func(ctx context.Context) error

// Enabled reports whether any exporter is configured.
func (o Options) Enabled() bool {
	return o.Endpoint != "" || o.Stdout
}

// Setup creates a tracer provider and installs it globally.
//
// Exporter priority:
//  1. Endpoint - OTLP over HTTP to a collector
//  2. Stdout - pretty printed spans to Writer
//
// Without either the global no-op provider stays in place and the returned
// shutdown does nothing.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	if !opts.Enabled() {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource(opts)),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func newExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	if opts.Endpoint != "" {
		endpoint := strings.TrimPrefix(opts.Endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return otlptracehttp.New(ctx,
			otlptracehttp.WithInsecure(),
			otlptracehttp.WithEndpoint(endpoint),
		)
	}

	if opts.Writer == nil {
		return nil, fmt.Errorf("stdout exporter requires a writer")
	}
	return stdouttrace.New(
		stdouttrace.WithWriter(opts.Writer),
		stdouttrace.WithPrettyPrint(),
	)
}

func newResource(opts Options) *resource.Resource {
	version := opts.ServiceVersion
	if version == "" {
		version = "dev"
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(version),
	)
}
