package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"outbound-caller/internal/observability"
)

var (
	ErrPoolNotStarted   = errors.New("call pool not started")
	ErrPoolShuttingDown = errors.New("call pool is shutting down")
	ErrDrainTimeout     = errors.New("drain timeout exceeded")
)

// WorkerPoolConfig holds configuration for the local call pool.
type WorkerPoolConfig struct {
	// NumWorkers is the number of calls placed concurrently.
	NumWorkers int

	// QueueSize is how many calls may wait for a free worker.
	QueueSize int

	// DrainTimeout is how long in-flight calls may run after Drain before they are hung up.
	DrainTimeout time.Duration
}

// DefaultWorkerPoolConfig returns sensible defaults for a worker pool.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		NumWorkers:   4,
		QueueSize:    16,
		DrainTimeout: 2 * time.Minute,
	}
}

// callPool places calls submitted by this process, e.g. from the HTTP API.
type callPool struct {
	config    WorkerPoolConfig
	processor CallProcessor
	logger    *observability.Logger

	jobs    chan CallRequest
	closing chan struct{} // closed once Drain or Stop begins
	wg      sync.WaitGroup

	// mu is held for reading by Submit while it sends, so jobs is only closed
	// once no sender remains.
	mu        sync.RWMutex
	started   bool
	draining  bool
	closeOnce sync.Once
	jobsOnce  sync.Once
	hangupAll context.CancelFunc
}

// NewWorkerPool creates the local call pool.
func NewWorkerPool(
	config WorkerPoolConfig,
	processor CallProcessor,
	logger *observability.Logger,
) WorkerPool {
	defaults := DefaultWorkerPoolConfig()
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	return &callPool{
		config:    config,
		processor: processor,
		logger:    logger,
		jobs:      make(chan CallRequest, config.QueueSize),
		closing:   make(chan struct{}),
	}
}

// Start launches the workers. Calls run until they end, Drain times out or Stop is called.
func (p *callPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("call pool already started")
	}
	if p.draining {
		return ErrPoolShuttingDown
	}

	callCtx, hangupAll := context.WithCancel(context.WithoutCancel(ctx))
	p.hangupAll = hangupAll
	p.started = true

	for i := 0; i < p.config.NumWorkers; i++ {
		p.wg.Add(1)
		go p.worker(callCtx, i)
	}

	p.logger.Info(ctx, fmt.Sprintf("Started %d call workers for %s processor",
		p.config.NumWorkers, p.processor.Name()))
	return nil
}

// Submit queues a call. It blocks while the queue is full, until ctx is done
// or the pool begins shutting down.
func (p *callPool) Submit(ctx context.Context, req CallRequest) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrPoolNotStarted
	}
	if p.draining {
		return ErrPoolShuttingDown
	}

	select {
	case p.jobs <- req:
		observability.QueuedCalls.Inc()
		return nil
	case <-p.closing:
		return ErrPoolShuttingDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

// beginShutdown unblocks pending submits and closes the queue once they are gone.
// It reports whether this call started the shutdown.
func (p *callPool) beginShutdown() bool {
	p.closeOnce.Do(func() { close(p.closing) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.draining {
		return false
	}
	p.draining = true
	p.jobsOnce.Do(func() { close(p.jobs) })
	return true
}

// Drain stops accepting calls, lets queued and in-flight calls finish, and
// hangs up whatever is still running once the drain timeout passes.
func (p *callPool) Drain(ctx context.Context) error {
	p.mu.RLock()
	started := p.started
	p.mu.RUnlock()
	if !started {
		return ErrPoolNotStarted
	}
	if !p.beginShutdown() {
		return fmt.Errorf("call pool already draining")
	}

	p.logger.Info(ctx, fmt.Sprintf("Draining call pool for %s processor, %d calls queued",
		p.processor.Name(), len(p.jobs)))

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info(ctx, "All pooled calls finished")
		return nil
	case <-time.After(p.config.DrainTimeout):
		p.logger.Warn(ctx, "Drain timeout - hanging up pooled calls still in progress")
		p.hangupAll()
		<-done
		return ErrDrainTimeout
	}
}

// Stop hangs up every call in flight and drops queued ones.
func (p *callPool) Stop() {
	p.beginShutdown()

	p.mu.RLock()
	hangupAll := p.hangupAll
	p.mu.RUnlock()
	if hangupAll != nil {
		hangupAll()
	}
}

func (p *callPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "worker_id", Value: id},
		observability.Field{Key: "processor", Value: p.processor.Name()},
	)

	for req := range p.jobs {
		observability.QueuedCalls.Dec()
		jobCtx := observability.WithFields(ctx,
			observability.Field{Key: "call_id", Value: req.CallID},
		)

		if ctx.Err() != nil {
			p.logger.Warn(jobCtx, "Pool stopped before call was placed, dropping it")
			continue
		}
		if err := p.processor.Process(jobCtx, req); err != nil {
			p.logger.Error(jobCtx, "Failed to process call", err)
		}
	}

	p.logger.Info(ctx, fmt.Sprintf("Call worker %d stopped", id))
}
