// Package tracing sets up OpenTelemetry so that every test run by the harness produces a span,
// and so that the trace context is propagated to the services under test.
package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	ServiceName        = "e2e-contract-tests"
	reconnectionPeriod = time.Second * 5
)

// Provider owns the tracer provider for a test run.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// NewProvider creates a tracer provider and installs it, along with the W3C trace context and
// baggage propagators, as the OpenTelemetry globals.
//
// If otlpEndpoint is empty, spans are still created (so that trace context is propagated to the
// services) but they are not exported anywhere.
func NewProvider(ctx context.Context, otlpEndpoint string) (*Provider, error) {
	var opts []sdktrace.TracerProviderOption
	if otlpEndpoint != "" {
		exporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(otlpEndpoint),
			otlptracegrpc.WithReconnectionPeriod(reconnectionPeriod),
			otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	return newProvider(opts...), nil
}

// NewProviderWithExporter is like NewProvider but exports synchronously to the given exporter.
func NewProviderWithExporter(exporter sdktrace.SpanExporter) *Provider {
	return newProvider(sdktrace.WithSyncer(exporter))
}

func newProvider(opts ...sdktrace.TracerProviderOption) *Provider {
	opts = append(opts, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
	)))
	tp := sdktrace.NewTracerProvider(opts...)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{}),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}
}

// Tracer returns the tracer that test scopes should use.
func (p *Provider) Tracer() trace.Tracer {
	return p.tp.Tracer(ServiceName)
}

// Shutdown flushes any pending spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	_ = p.tp.ForceFlush(ctx)
	return p.tp.Shutdown(ctx)
}
