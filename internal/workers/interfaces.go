package workers

import (
	"context"

	"outbound-caller/internal/outbound"
)

// CallRequest is an alias for the outbound call job.
// This allows callers to reference CallRequest without importing outbound directly.
type CallRequest = outbound.CallRequest

// CallProcessor places a single call.
// A returned error is logged; the job is never retried since a retry would redial the callee.
type CallProcessor interface {
	// Process handles a single call job and blocks until the call is over.
	Process(ctx context.Context, req CallRequest) error

	// Name returns the processor name for logging and metrics.
	Name() string
}

// CallConsumer defines the interface for consuming call jobs from Kafka
// and distributing them to workers.
type CallConsumer interface {
	// Start begins consuming jobs from Kafka and processing them.
	// Blocks until Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the consumer, draining in-flight calls.
	Stop()
}

// WorkerPool defines the interface for managing a pool of call workers.
type WorkerPool interface {
	// Start initializes the worker pool with N workers.
	Start(ctx context.Context) error

	// Submit adds a job to the pool. Blocks if the queue is full.
	Submit(ctx context.Context, req CallRequest) error

	// Drain stops accepting new jobs and waits for in-flight calls to complete.
	// Returns after all workers have finished or the drain timeout passes.
	Drain(ctx context.Context) error

	// Stop immediately stops all workers, hanging up calls in flight.
	Stop()
}
