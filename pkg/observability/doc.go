// Package observability provides structured logging, Prometheus metrics, health probes
// and OpenTelemetry tracing for the CAD/MDT server.
//
// # Structured Logging
//
// Loggers wrap logrus and emit JSON by default:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("server_slug", slug).Info("resolved membership")
//
// Request-scoped loggers travel in the context:
//
//	ctx = observability.WithLogger(ctx, logger)
//	observability.FromContext(ctx).Warn("malformed permission blob")
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	metrics.RecordAccessDecision("guard", "PERMISSION_CHECK_FAILED")
//
// HTTP metrics are labelled by the mux route template, never by the raw path.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(db, redisClient).WithVersion(version)
//	observability.RegisterHealthRoutes(router, checker)
//
// # OpenTelemetry
//
//	telemetry, err := observability.StartTelemetry(ctx, observability.TelemetryConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "cadmdt",
//		Insecure:    true,
//		SampleRatio: 0.1,
//	}, logger)
//	defer telemetry.Shutdown(ctx)
//	router.Use(observability.TracingMiddleware("cadmdt"))
//
// # Shutdown
//
//	shutdown := observability.NewShutdownManager(server, logger, 30*time.Second)
//	shutdown.RegisterShutdownFunc(func(ctx context.Context) error { return db.Close() })
//	err := shutdown.WaitForShutdown(ctx)
package observability
