// Package apm sets up OpenTelemetry tracing for a run.
package apm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbgraph/internal/logger"
)

// Provider names a span exporter backend.
type Provider string

const (
	ZipkinProvider    Provider = "zipkin"
	OTLPProvider      Provider = "otlp"      // gRPC
	OTLPHTTPProvider  Provider = "otlp-http" // HTTP/protobuf
	HoneycombProvider Provider = "honeycomb"
	NewRelicProvider  Provider = "newrelic"
	ConsoleProvider   Provider = "console"
	EmptyProvider     Provider = "none"
)

// Config selects and configures the exporter.
type Config struct {
	ServiceName string
	Provider    Provider
	Endpoint    string
	Headers     string // key=value pairs separated by commas

	// Writer receives console spans. Defaults to stdout.
	Writer io.Writer
}

// TraceProvider flushes and stops the installed provider.
type TraceProvider interface {
	Stop() error
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

// NewTraceProvider builds the exporter named by cfg.Provider and installs
// the resulting provider and a W3C propagator globally. EmptyProvider leaves
// the global no-op tracer in place.
func NewTraceProvider(ctx context.Context, cfg Config, log logger.LoggerInterface) (TraceProvider, error) {
	if cfg.Provider == "" || cfg.Provider == EmptyProvider {
		return emptyTraceProvider{}, nil
	}

	exp, err := newExporter(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("apm: %s exporter: %w", cfg.Provider, err)
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("otel.provider", string(cfg.Provider)),
		))
	if err != nil {
		return nil, fmt.Errorf("apm: resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, cfg Config, log logger.LoggerInterface) (sdktrace.SpanExporter, error) {
	switch cfg.Provider {
	case ConsoleProvider:
		w := cfg.Writer
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())

	case ZipkinProvider:
		return zipkin.New(cfg.Endpoint)

	case OTLPProvider, HoneycombProvider:
		headers, err := ParseHeaders(cfg.Headers)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "initializing OTLP gRPC trace exporter", "endpoint", cfg.Endpoint)
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithHeaders(headers),
		)

	case OTLPHTTPProvider:
		headers, err := ParseHeaders(cfg.Headers)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "initializing OTLP HTTP trace exporter", "endpoint", cfg.Endpoint)
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.Endpoint),
			otlptracehttp.WithHeaders(headers),
		)

	case NewRelicProvider:
		// New Relic takes the bare license key as api-key.
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithHeaders(map[string]string{"api-key": cfg.Headers}),
		)
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// ParseHeaders parses "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func ParseHeaders(s string) (map[string]string, error) {
	headers := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return headers, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, expected key=value", pair)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}

// TraceIDFromContext returns the active trace id, or nil when ctx carries no
// sampled span. Its signature matches logger.ContextFn.
func TraceIDFromContext(ctx context.Context) []any {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String()}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return o.tp.Shutdown(ctx)
}
