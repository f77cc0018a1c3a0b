// Package async runs background work off the request path.
//
// WorkerPool bounds both concurrency and queue length. Submit never blocks; a full
// queue is reported to the caller, which decides whether to drop the task.
//
//	pool := async.NewWorkerPool(ctx, 2, 1024, "audit", 5*time.Second, logger)
//	defer pool.Shutdown(10 * time.Second)
//
//	if err := pool.Submit(func(ctx context.Context) error {
//		return store.Insert(ctx, event)
//	}); err != nil {
//		logger.WithError(err).Warn("Dropping event")
//	}
package async
