package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Access control metrics
	AccessDecisionsTotal     *prometheus.CounterVec
	PermissionResolutions    *prometheus.CounterVec
	ResolutionDuration       prometheus.Histogram
	PermissionChecksTotal    *prometheus.CounterVec
	RateLimitRejectionsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadmdt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cadmdt_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "route"},
		),

		// Access control metrics
		AccessDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_access_decisions_total",
				Help: "Access decisions by evaluator and decision state",
			},
			[]string{"evaluator", "state"},
		),
		PermissionResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_permission_resolutions_total",
				Help: "Effective permission resolutions by outcome",
			},
			[]string{"outcome"},
		),
		ResolutionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cadmdt_permission_resolution_duration_seconds",
				Help:    "Time spent loading a membership and resolving its permissions",
				Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_permission_checks_total",
				Help: "check-permission endpoint calls by mode and result",
			},
			[]string{"mode", "result"},
		),
		RateLimitRejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_rate_limit_rejections_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"limiter"},
		),

		// Cache metrics
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadmdt_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPResponseSize,
		m.AccessDecisionsTotal,
		m.PermissionResolutions,
		m.ResolutionDuration,
		m.PermissionChecksTotal,
		m.RateLimitRejectionsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// RegisterDBStats exports database/sql pool statistics
func RegisterDBStats(registry prometheus.Registerer, db *sql.DB, name string) {
	registry.MustRegister(collectors.NewDBStatsCollector(db, name))
}

// RecordAccessDecision counts one evaluator decision. Safe on a nil receiver.
func (m *Metrics) RecordAccessDecision(evaluator, state string) {
	if m == nil {
		return
	}
	m.AccessDecisionsTotal.WithLabelValues(evaluator, state).Inc()
}

// RecordResolution counts a resolution outcome and its duration. Safe on a nil receiver.
func (m *Metrics) RecordResolution(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PermissionResolutions.WithLabelValues(outcome).Inc()
	m.ResolutionDuration.Observe(duration.Seconds())
}

// RecordPermissionCheck counts a check-permission call. Safe on a nil receiver.
func (m *Metrics) RecordPermissionCheck(mode, result string) {
	if m == nil {
		return
	}
	m.PermissionChecksTotal.WithLabelValues(mode, result).Inc()
}

// RecordRateLimitRejection counts a limiter rejection. Safe on a nil receiver.
func (m *Metrics) RecordRateLimitRejection(limiter string) {
	if m == nil {
		return
	}
	m.RateLimitRejectionsTotal.WithLabelValues(limiter).Inc()
}

// RecordCacheLookup counts a cache hit or miss. Safe on a nil receiver.
func (m *Metrics) RecordCacheLookup(cacheType string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// routeLabel returns the mux route template so slugs and IDs do not explode label
// cardinality. Unmatched requests share one label.
func routeLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := routeLabel(r)
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(duration)
			metrics.HTTPResponseSize.WithLabelValues(r.Method, route).Observe(float64(rw.bytesWritten))
		})
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
