package async

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/platinummonkey/cadmdt/pkg/observability"
)

var (
	// ErrPoolClosed is returned by Submit after Shutdown
	ErrPoolClosed = errors.New("worker pool shut down")
	// ErrPoolFull is returned by Submit when the queue has no room
	ErrPoolFull = errors.New("worker pool queue full")
)

// WorkerPool runs submitted tasks on a fixed number of goroutines. Each task gets its
// own timeout; errors and panics are logged, never returned to the submitter.
type WorkerPool struct {
	taskName string
	timeout  time.Duration
	logger   *observability.Logger

	workCh chan func(context.Context) error
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.RWMutex
	closed       bool
	shutdownOnce sync.Once
}

// NewWorkerPool starts workers goroutines reading from a queue of queueSize tasks.
// logger may be nil.
func NewWorkerPool(ctx context.Context, workers, queueSize int, taskName string, timeout time.Duration, logger *observability.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = observability.GetLogger(ctx)
	}
	ctx, cancel := context.WithCancel(ctx)

	p := &WorkerPool{
		taskName: taskName,
		timeout:  timeout,
		logger:   logger.WithField("task", taskName),
		workCh:   make(chan func(context.Context) error, queueSize),
		ctx:      ctx,
		cancel:   cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer p.wg.Done()
			p.worker(id)
		}(i)
	}
	return p
}

// Submit queues fn without blocking
func (p *WorkerPool) Submit(fn func(context.Context) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.workCh <- fn:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks and waits up to timeout for the queue to drain.
// Tasks still running after timeout have their context cancelled.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	var shutdownErr error

	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.workCh)
		p.mu.Unlock()

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(timeout):
			shutdownErr = fmt.Errorf("%s: worker pool shutdown timed out after %v", p.taskName, timeout)
		}
		p.cancel()
	})

	return shutdownErr
}

func (p *WorkerPool) worker(id int) {
	for fn := range p.workCh {
		p.run(id, fn)
	}
}

func (p *WorkerPool) run(id int, fn func(context.Context) error) {
	ctx := p.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.WithFields(map[string]interface{}{
				"worker": id,
				"panic":  fmt.Sprint(r),
				"stack":  string(debug.Stack()),
			}).Error("Task panicked")
		}
	}()

	if err := fn(ctx); err != nil {
		p.logger.WithField("worker", id).WithError(err).Warn("Task failed")
	}
}
