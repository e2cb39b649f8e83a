package event

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/config"
)

// MessageWriter is the part of *kafka.Writer the forwarder uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds an asynchronous writer for the configured topic.
// Messages are hashed by key so one aggregate's events stay ordered.
func NewKafkaWriter(cfg config.KafkaConfig, log *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("Kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Sugar().Errorf(msg, args...)
		}),
	}
}

// KafkaForwarder subscribes to every event on the bus and forwards it to
// Kafka for downstream consumers (mailers, analytics)
type KafkaForwarder struct {
	writer MessageWriter
	log    *zap.Logger
}

// NewKafkaForwarder creates a forwarder writing through w
func NewKafkaForwarder(w MessageWriter, log *zap.Logger) *KafkaForwarder {
	return &KafkaForwarder{writer: w, log: log}
}

// EventTypes returns nil so the bus delivers every event
func (f *KafkaForwarder) EventTypes() []string {
	return nil
}

// Handle encodes ev and writes it keyed by aggregate ID
func (f *KafkaForwarder) Handle(ctx context.Context, ev shared.DomainEvent) error {
	value, err := Encode(ev)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(ev.AggregateID().String()),
		Value: value,
		Time:  ev.OccurredAt(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType())},
			{Key: "event_id", Value: []byte(ev.EventID().String())},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to forward %s: %w", ev.EventType(), err)
	}
	return nil
}

// Close flushes pending messages
func (f *KafkaForwarder) Close() error {
	return f.writer.Close()
}

var _ shared.EventHandler = (*KafkaForwarder)(nil)
