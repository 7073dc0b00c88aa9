// Package events publishes domain events to Kafka.
//
// Publishing happens after the originating write commits and is best-effort:
// the Emitter logs and counts failures but never returns them to callers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/helixir/paper-library-service/internal/config"
	"github.com/helixir/paper-library-service/internal/domain"
)

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, events ...*domain.Event) error
	Close() error
}

// envelope is the JSON wire format of an event.
type envelope struct {
	EventID       string          `json:"eventId"`
	EventVersion  int             `json:"eventVersion"`
	EventType     string          `json:"eventType"`
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	UserID        string          `json:"userId"`
	Payload       json.RawMessage `json:"payload"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// messageWriter is the subset of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by user id.
type KafkaPublisher struct {
	writer messageWriter
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers.
func NewKafkaPublisher(cfg config.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer}, nil
}

// Publish writes events synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...*domain.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write events to kafka: %w", err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e *domain.Event) (kafka.Message, error) {
	value, err := json.Marshal(envelope{
		EventID:       e.EventID,
		EventVersion:  e.EventVersion,
		EventType:     e.EventType,
		AggregateID:   e.AggregateID,
		AggregateType: e.AggregateType,
		UserID:        e.UserID.String(),
		Payload:       e.Payload,
		CreatedAt:     e.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event %s: %w", e.EventID, err)
	}
	return kafka.Message{
		Key:   []byte(e.UserID.String()),
		Value: value,
		Time:  e.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.EventType)},
			{Key: "event_id", Value: []byte(e.EventID)},
		},
	}, nil
}

// NopPublisher discards events. Used when Kafka is disabled.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, ...*domain.Event) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
