package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"outbound-caller/internal/observability"
	"outbound-caller/internal/outbound"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes call requests to Kafka
type Producer struct {
	writer messageWriter
	logger *observability.Logger
}

// ProducerConfig contains configuration for Kafka producer
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a new Kafka producer
func NewProducer(config ProducerConfig, logger *observability.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:  kafka.TCP(config.Brokers...),
		Topic: config.Topic,
		// Requests for the same number land on the same partition
		Balancer:     &kafka.Hash{},
		Async:        false,
		Compression:  kafka.Snappy,
		RequiredAcks: kafka.RequireAll,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// PublishCall publishes a call request. The request is validated first so a
// consumer never sees a job without an id or room.
func (p *Producer) PublishCall(ctx context.Context, req outbound.CallRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "call_id", Value: req.CallID},
		observability.Field{Key: "room", Value: req.RoomName},
		observability.Field{Key: "persona", Value: req.Persona},
	)

	value, err := json.Marshal(req)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal call request", err)
		return fmt.Errorf("failed to marshal call request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(req.PhoneNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "call_id", Value: []byte(req.CallID)},
			{Key: "persona", Value: []byte(req.Persona)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write message to kafka", err)
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	p.logger.Info(ctx, fmt.Sprintf("published call request %s to kafka", req.CallID))
	return nil
}

// Close flushes and closes the underlying writer
func (p *Producer) Close() error {
	return p.writer.Close()
}
