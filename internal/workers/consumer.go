package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"outbound-caller/internal/observability"

	kafkago "github.com/segmentio/kafka-go"
)

// ConsumerConfig holds configuration for the Kafka call consumer.
type ConsumerConfig struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// ConsumerGroup is the Kafka consumer group ID.
	ConsumerGroup string

	// Topic is the Kafka topic to consume from.
	Topic string

	// NumWorkers is the number of calls handled concurrently.
	NumWorkers int

	// QueueSize is the buffer size for the job channel.
	QueueSize int

	// DrainTimeout is how long in-flight calls may run after Stop before they are hung up.
	DrainTimeout time.Duration
}

// DefaultConsumerConfig returns sensible defaults for a consumer.
func DefaultConsumerConfig(brokers []string, consumerGroup, topic string) ConsumerConfig {
	return ConsumerConfig{
		Brokers:       brokers,
		ConsumerGroup: consumerGroup,
		Topic:         topic,
		NumWorkers:    4,
		QueueSize:     16,
		DrainTimeout:  2 * time.Minute,
	}
}

// messageReader is the part of kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// jobWithMsg pairs a call job with its Kafka message for offset tracking.
type jobWithMsg struct {
	req CallRequest
	msg kafkago.Message
}

// consumer implements the CallConsumer interface.
type consumer struct {
	config    ConsumerConfig
	reader    messageReader
	processor CallProcessor
	logger    *observability.Logger

	jobCh chan jobWithMsg

	// Lifecycle management
	cancelFetch context.CancelFunc // cancels the fetch context
	doneCh      chan struct{}      // closed when Start() returns
	stopping    atomic.Bool
	stopOnce    sync.Once
}

// NewConsumer creates a new Kafka call consumer.
func NewConsumer(
	config ConsumerConfig,
	processor CallProcessor,
	logger *observability.Logger,
) CallConsumer {
	defaults := DefaultConsumerConfig(config.Brokers, config.ConsumerGroup, config.Topic)
	if config.NumWorkers <= 0 {
		config.NumWorkers = defaults.NumWorkers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = defaults.DrainTimeout
	}

	c := &consumer{
		config:    config,
		processor: processor,
		logger:    logger,
		jobCh:     make(chan jobWithMsg, config.QueueSize),
		doneCh:    make(chan struct{}),
	}

	c.reader = kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        config.Brokers,
		Topic:          config.Topic,
		GroupID:        config.ConsumerGroup,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafkago.LastOffset,
		CommitInterval: 0, // Manual commit
	})

	ctx := observability.WithFields(context.Background(),
		observability.Field{Key: "processor", Value: processor.Name()},
		observability.Field{Key: "consumer_group", Value: config.ConsumerGroup},
		observability.Field{Key: "topic", Value: config.Topic},
		observability.Field{Key: "num_workers", Value: config.NumWorkers},
	)
	logger.Info(ctx, fmt.Sprintf("Initialized consumer for %s processor", processor.Name()))

	return c
}

// Start begins consuming call jobs and blocks until Stop is called.
func (c *consumer) Start(ctx context.Context) error {
	defer close(c.doneCh)

	// Only Stop ends the fetch loop
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelFetch = cancel
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "consumer_group", Value: c.config.ConsumerGroup},
		observability.Field{Key: "topic", Value: c.config.Topic},
		observability.Field{Key: "processor", Value: c.processor.Name()},
	)

	// Calls outlive the fetch loop and are only cut off when the drain timeout passes
	callCtx, hangupAll := context.WithCancel(context.WithoutCancel(ctx))
	defer hangupAll()

	c.logger.Info(ctx, fmt.Sprintf("Starting consumer for %s with %d workers",
		c.processor.Name(), c.config.NumWorkers))

	var workerWg sync.WaitGroup
	for i := 0; i < c.config.NumWorkers; i++ {
		workerWg.Add(1)
		go c.worker(&workerWg, i, callCtx)
	}

	c.fetchLoop(ctx)

	close(c.jobCh)

	done := make(chan struct{})
	go func() {
		workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info(ctx, "All workers finished processing")
	case <-time.After(c.config.DrainTimeout):
		c.logger.Warn(ctx, "Drain timeout - hanging up calls still in progress")
		hangupAll()
		<-done
	}

	if err := c.reader.Close(); err != nil {
		c.logger.Error(ctx, "Failed to close Kafka reader", err)
	}

	c.logger.Info(ctx, fmt.Sprintf("Consumer stopped for %s", c.processor.Name()))
	return nil
}

// fetchLoop fetches messages from Kafka until context is cancelled.
func (c *consumer) fetchLoop(ctx context.Context) {
	for {
		if c.stopping.Load() {
			return
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if c.stopping.Load() || ctx.Err() != nil {
				return // Clean shutdown
			}
			c.logger.Error(ctx, "Failed to fetch message from Kafka", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var req CallRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.logger.Error(ctx, "Failed to unmarshal call request, skipping", err)
			if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
				c.logger.Error(ctx, "Failed to commit skipped message", commitErr)
			}
			continue
		}

		select {
		case c.jobCh <- jobWithMsg{req: req, msg: msg}:
		case <-ctx.Done():
			return
		}
	}
}

// worker places calls from the channel until it's closed.
func (c *consumer) worker(wg *sync.WaitGroup, id int, ctx context.Context) {
	defer wg.Done()

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "worker_id", Value: id},
	)

	c.logger.Info(ctx, fmt.Sprintf("Worker %d started for %s processor", id, c.processor.Name()))

	for j := range c.jobCh {
		jobCtx := observability.WithFields(ctx,
			observability.Field{Key: "call_id", Value: j.req.CallID},
			observability.Field{Key: "partition", Value: j.msg.Partition},
			observability.Field{Key: "offset", Value: j.msg.Offset},
		)

		if err := c.processor.Process(jobCtx, j.req); err != nil {
			c.logger.Error(jobCtx, "Failed to process call", err)
		}

		// Commit regardless of the outcome: a redelivered job would call the same number twice
		if c.reader != nil {
			if commitErr := c.reader.CommitMessages(context.WithoutCancel(jobCtx), j.msg); commitErr != nil {
				c.logger.Error(jobCtx, "Failed to commit offset", commitErr)
			}
		}
	}

	c.logger.Info(ctx, fmt.Sprintf("Worker %d stopped", id))
}

// Stop gracefully shuts down the consumer.
// It signals the fetch loop to stop, waits for in-flight calls to complete,
// and returns only after full shutdown.
func (c *consumer) Stop() {
	c.stopOnce.Do(func() {
		logCtx := observability.WithFields(context.Background(),
			observability.Field{Key: "processor", Value: c.processor.Name()},
		)
		c.logger.Info(logCtx, fmt.Sprintf("Stopping consumer for %s", c.processor.Name()))

		c.stopping.Store(true)

		if c.cancelFetch != nil {
			c.cancelFetch()
		}

		<-c.doneCh
	})
}
