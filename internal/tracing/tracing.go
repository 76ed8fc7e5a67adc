// Package tracing sets up OpenTelemetry for the server and gives handlers and
// stores a small helper for game-tagged spans.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const DefaultServiceName = "twenty-one-go"

const (
	ExportStdout = "stdout"
	ExportNone   = "none"
)

var tracer trace.Tracer

// Config controls tracer setup. Environment and TracesExport fall back to
// APP_ENV and OTEL_TRACES_EXPORTER.
type Config struct {
	ServiceName  string
	Environment  string
	PrettyPrint  bool
	TracesExport string // stdout|none
}

func (c Config) withDefaults() Config {
	if c.Environment == "" {
		c.Environment = envOr("APP_ENV", "development")
	}
	if c.TracesExport == "" {
		c.TracesExport = envOr("OTEL_TRACES_EXPORTER", ExportStdout)
	}
	return c
}

// InitTracer installs the global tracer provider and propagators. The
// returned function flushes pending spans and must be called on exit.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("tracing: ServiceName is required")
	}
	cfg = cfg.withDefaults()

	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFromEnv(cfg.Environment)),
	}
	exporter, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracer = tp.Tracer(cfg.ServiceName)
	return tp.Shutdown, nil
}

func newResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithProcess(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	// a partial resource still carries the service name
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("tracing: create resource: %w", err)
	}
	return res, nil
}

// newExporter returns nil when spans should be dropped.
func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.TracesExport {
	case ExportNone, "noop":
		return nil, nil
	}
	var opts []stdouttrace.Option
	if cfg.PrettyPrint {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("tracing: init stdout exporter: %w", err)
	}
	return exporter, nil
}

func GetTracer() trace.Tracer {
	if tracer == nil {
		tracer = otel.Tracer(DefaultServiceName)
	}
	return tracer
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
