package telemetry

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer installs a global tracer provider exporting spans over OTLP/HTTP
// to endpoint. The returned function flushes and stops the provider.
func InitTracer(ctx context.Context, endpoint, serviceName, version string, attrs ...attribute.KeyValue) (trace.Tracer, func(context.Context) error, error) {
	opts := []otlptracehttp.Option{}
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(u.Host))
		if u.Scheme == "http" {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}

	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res := resource.NewSchemaless(append([]attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	}, attrs...)...)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Tracer(serviceName), tp.Shutdown, nil
}
