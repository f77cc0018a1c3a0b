package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/cadmdt/pkg/api"
	"github.com/platinummonkey/cadmdt/pkg/audit"
	"github.com/platinummonkey/cadmdt/pkg/auth"
	"github.com/platinummonkey/cadmdt/pkg/config"
	"github.com/platinummonkey/cadmdt/pkg/middleware"
	"github.com/platinummonkey/cadmdt/pkg/navigation"
	"github.com/platinummonkey/cadmdt/pkg/observability"
	"github.com/platinummonkey/cadmdt/pkg/orgs"
	"github.com/platinummonkey/cadmdt/pkg/rbac"
	"github.com/platinummonkey/cadmdt/pkg/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLoggerWithFormat(cfg.Observability.LogLevel, cfg.Observability.LogFormat, os.Stdout)
	logger.WithFields(map[string]interface{}{
		"version": version,
		"driver":  cfg.Storage.Driver,
	}).Info("Starting cadmdt")

	telemetry, err := observability.StartTelemetry(ctx, observability.TelemetryConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
		SampleRatio:    cfg.Observability.OTelSampleRatio,
	}, logger)
	if err != nil {
		// tracing is optional; keep serving without it
		logger.WithError(err).Warn("OpenTelemetry initialization failed")
	}

	table := navigation.Default()
	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	db, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	redisClient, err := storage.NewRedisClient(ctx, cfg.Storage)
	if err != nil {
		db.Close()
		return err
	}

	var (
		metrics  *observability.Metrics
		registry *prometheus.Registry
	)
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observability.RegisterDBStats(registry, db, "cadmdt")
		metrics = observability.NewMetrics(registry)
	}

	service := orgs.NewSQLService(db)
	slugs := orgs.NewSlugCache(service, cfg.OrgCache.Size, cfg.OrgCache.TTL).WithMetrics(metrics)

	auditLog, err := newAuditLogger(ctx, cfg.Audit, db, logger)
	if err != nil {
		db.Close()
		return err
	}

	srv := api.NewServer(api.Dependencies{
		Checker:       rbac.NewResolver(service, metrics),
		Organizations: slugs,
		Authenticator: auth.NewTokenStore(db),
		Table:         table,
		Logger:        logger,
		Metrics:       metrics,
		Registry:      registry,
		Health:        observability.NewHealthChecker(db, redisClient).WithVersion(version),
		RateLimiter:   newRateLimiter(ctx, cfg.RateLimit, redisClient, metrics),
		Audit:         auditLog,
		Proxies:       proxies,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srv,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     log.New(logger.Writer(), "", 0),
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	// shutdown funcs run concurrently; the audit queue drains into db before it closes
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		auditErr := auditLog.Close()
		cancel()
		return errors.Join(auditErr, db.Close())
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}
	if telemetry.Enabled() {
		shutdown.RegisterShutdownFunc(telemetry.Shutdown)
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	waitCtx, stopWaiting := context.WithCancel(ctx)
	defer stopWaiting()
	listenFailed := make(chan error, 1)
	go func() {
		select {
		case err := <-serveErr:
			logger.WithError(err).Error("HTTP server failed")
			listenFailed <- err
			stopWaiting()
		case <-waitCtx.Done():
		}
	}()

	if err := shutdown.WaitForShutdown(waitCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	select {
	case err := <-listenFailed:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// newAuditLogger records guard denials in the log and, when enabled, the
// access_audit table, writing from a background pool
func newAuditLogger(ctx context.Context, cfg config.AuditConfig, db *sql.DB, logger *observability.Logger) (audit.Logger, error) {
	sinks := []audit.Logger{audit.NewLogLogger(logger)}
	if cfg.Store {
		store, err := audit.NewDBLogger(db)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, store)
	}

	asyncCfg := audit.DefaultAsyncConfig()
	asyncCfg.Workers = cfg.Workers
	asyncCfg.QueueSize = cfg.QueueSize
	return audit.NewAsyncLogger(context.WithoutCancel(ctx), audit.NewMultiLogger(sinks...), asyncCfg, logger), nil
}

// newRateLimiter limits per user, sharing counters through Redis when it is
// configured so every replica enforces the same budget
func newRateLimiter(ctx context.Context, cfg config.RateLimitConfig, redisClient *redis.Client, metrics *observability.Metrics) *middleware.RateLimitMiddleware {
	perUser := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.PerMinute,
		WindowDuration:    time.Minute,
		BurstSize:         cfg.Burst,
	}
	anonymous := middleware.DefaultRateLimitConfig()

	if redisClient != nil {
		return middleware.NewRateLimitMiddleware(
			middleware.NewDistributedRateLimiter(redisClient, perUser, ""),
			middleware.NewDistributedRateLimiter(redisClient, anonymous, ""),
			metrics, "redis",
		)
	}

	user := middleware.NewRateLimiter(perUser)
	anon := middleware.NewRateLimiter(anonymous)
	user.StartCleanup(ctx)
	anon.StartCleanup(ctx)
	return middleware.NewRateLimitMiddleware(user, anon, metrics, "local")
}
