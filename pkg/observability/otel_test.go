package observability

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func useSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func TestStartTelemetry_Disabled(t *testing.T) {
	telemetry, err := StartTelemetry(context.Background(), TelemetryConfig{}, NewLogger(InfoLevel, &bytes.Buffer{}))

	require.NoError(t, err)
	assert.False(t, telemetry.Enabled())
	assert.NoError(t, telemetry.Shutdown(context.Background()))

	var missing *Telemetry
	assert.NoError(t, missing.Shutdown(context.Background()))
}

func TestTelemetryResource(t *testing.T) {
	res, err := telemetryResource(context.Background(), TelemetryConfig{ServiceName: "cadmdt", ServiceVersion: "v0.3.0"})
	require.NoError(t, err)

	attrs := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, ServiceNamespace, attrs["service.namespace"])
	assert.Equal(t, "cadmdt", attrs["service.name"])
	assert.Equal(t, "v0.3.0", attrs["service.version"])
}

func TestWithTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	assert.Same(t, logger, WithTraceContext(context.Background(), logger))

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "guard")
	defer span.End()

	WithTraceContext(ctx, logger).Info("denied")
	entry := decodeEntry(t, &buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])

	buf.Reset()
	FromContext(WithLogger(ctx, logger)).Info("via context")
	assert.Equal(t, span.SpanContext().TraceID().String(), decodeEntry(t, &buf)["trace_id"])
}

func TestTracingMiddleware(t *testing.T) {
	recorder := useSpanRecorder(t)

	router := mux.NewRouter()
	router.Use(TracingMiddleware("cadmdt"))
	router.HandleFunc("/servers/{serverSlug}/citizens", func(w http.ResponseWriter, r *http.Request) {
		AnnotateServer(r.Context(), mux.Vars(r)["serverSlug"])
		w.WriteHeader(http.StatusNoContent)
	})
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/servers/acme/citizens", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	spans := recorder.Ended()
	require.Len(t, spans, 1, "health probes are not traced")
	assert.Equal(t, "GET /servers/{serverSlug}/citizens", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("cadmdt.server_slug", "acme"))
}
