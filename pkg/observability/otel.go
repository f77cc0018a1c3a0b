package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceNamespace groups cadmdt processes in the telemetry backend
const ServiceNamespace = "cadmdt"

// TelemetryConfig configures OTLP export of spans and runtime metrics
type TelemetryConfig struct {
	Enabled        bool
	Endpoint       string
	ServiceName    string
	ServiceVersion string
	Insecure       bool
	// SampleRatio applies to root spans; children follow their parent
	SampleRatio float64
}

// Telemetry owns the providers installed by StartTelemetry. A disabled
// Telemetry is valid and its Shutdown does nothing.
type Telemetry struct {
	tracer *sdktrace.TracerProvider
	meter  *metric.MeterProvider
	logger *Logger
}

// StartTelemetry installs global tracer and meter providers exporting to cfg.Endpoint.
// Exporters dial lazily, so an absent collector does not block startup.
func StartTelemetry(ctx context.Context, cfg TelemetryConfig, logger *Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}
	if !cfg.Enabled {
		logger.Debug("OpenTelemetry export disabled")
		return t, nil
	}

	res, err := telemetryResource(ctx, cfg)
	if err != nil {
		return t, fmt.Errorf("telemetry resource: %w", err)
	}

	var dial []grpc.DialOption
	if cfg.Insecure {
		dial = append(dial, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	spans, err := otlptracegrpc.New(setupCtx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithDialOption(dial...),
	)
	if err != nil {
		return t, fmt.Errorf("trace exporter: %w", err)
	}
	points, err := otlpmetricgrpc.New(setupCtx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithDialOption(dial...),
	)
	if err != nil {
		return t, errors.Join(fmt.Errorf("metric exporter: %w", err), spans.Shutdown(ctx))
	}

	t.tracer = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(spans),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	t.meter = metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(points, metric.WithInterval(30*time.Second))),
	)

	otel.SetTracerProvider(t.tracer)
	otel.SetMeterProvider(t.meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.WithFields(map[string]interface{}{
		"endpoint":     cfg.Endpoint,
		"sample_ratio": cfg.SampleRatio,
	}).Info("OpenTelemetry export started")
	return t, nil
}

func telemetryResource(ctx context.Context, cfg TelemetryConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNamespaceKey.String(ServiceNamespace),
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
		resource.WithFromEnv(),
		resource.WithHost(),
	)
}

// Enabled reports whether providers were installed
func (t *Telemetry) Enabled() bool {
	return t != nil && t.tracer != nil
}

// Shutdown flushes pending spans and metric points
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if !t.Enabled() {
		return nil
	}
	err := errors.Join(t.tracer.Shutdown(ctx), t.meter.Shutdown(ctx))
	if err != nil {
		t.logger.WithError(err).Warn("OpenTelemetry shutdown incomplete")
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	return nil
}

// WithTraceContext tags logger with the trace and span of a recording span in ctx
func WithTraceContext(ctx context.Context, logger *Logger) *Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return logger
	}
	sc := span.SpanContext()
	return logger.WithFields(map[string]interface{}{
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	})
}

// TracingMiddleware starts a server span per request, named after the matched
// route template. The server slug is recorded as an attribute, not in the name.
func TracingMiddleware(operation string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(operation,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + routeLabel(r)
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/readyz"
		}),
	)
}

// AnnotateServer records the server slug on the current span
func AnnotateServer(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("cadmdt.server_slug", slug))
}
