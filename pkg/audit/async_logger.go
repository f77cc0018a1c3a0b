package audit

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/async"
	"github.com/platinummonkey/cadmdt/pkg/observability"
)

// AsyncConfig sizes the background writer
type AsyncConfig struct {
	Workers         int
	QueueSize       int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultAsyncConfig returns the writer settings used by the server
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Workers:         2,
		QueueSize:       1024,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// AsyncLogger hands events to a worker pool so requests never wait on the audit
// store. Events are dropped, with a warning, when the queue is full.
type AsyncLogger struct {
	next            Logger
	pool            *async.WorkerPool
	logger          *observability.Logger
	shutdownTimeout time.Duration
}

// NewAsyncLogger wraps next. ctx bounds the lifetime of the workers.
func NewAsyncLogger(ctx context.Context, next Logger, cfg AsyncConfig, logger *observability.Logger) *AsyncLogger {
	if logger == nil {
		logger = observability.GetLogger(ctx)
	}
	return &AsyncLogger{
		next:            next,
		pool:            async.NewWorkerPool(ctx, cfg.Workers, cfg.QueueSize, "audit", cfg.WriteTimeout, logger),
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Log queues a copy of event. It only fails when the logger is closed.
func (a *AsyncLogger) Log(_ context.Context, event *Event) error {
	e := *event
	err := a.pool.Submit(func(ctx context.Context) error {
		return a.next.Log(ctx, &e)
	})
	if errors.Is(err, async.ErrPoolFull) {
		a.logger.WithFields(e.Fields()).Warn("Audit queue full, dropping event")
		return nil
	}
	return err
}

// Close drains queued events, then closes the wrapped logger
func (a *AsyncLogger) Close() error {
	if err := a.pool.Shutdown(a.shutdownTimeout); err != nil {
		a.logger.WithError(err).Warn("Audit queue did not drain")
	}
	return a.next.Close()
}
