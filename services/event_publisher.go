package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const EventTransactionCompleted = "transaction.completed"

// TransactionEvent describes a committed transaction lifecycle change
type TransactionEvent struct {
	Type          string                 `json:"type"`
	TransactionID uint                   `json:"transaction_id"`
	UserID        uint                   `json:"user_id"`
	TotalAmount   int64                  `json:"total_amount"`
	Items         []TransactionEventItem `json:"items"`
	OccurredAt    time.Time              `json:"occurred_at"`
}

type TransactionEventItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// EventPublisher delivers domain events after they are committed
type EventPublisher interface {
	Publish(ctx context.Context, event TransactionEvent) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by transaction id
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		topic: topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			// Publish writes one message per call, so flush it without waiting for a batch
			BatchSize:    1,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.TransactionID), 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops every event; used when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event TransactionEvent) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }

// RecordingPublisher keeps published events in memory for testing
type RecordingPublisher struct {
	mu     sync.Mutex
	events []TransactionEvent
	Err    error
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(ctx context.Context, event TransactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far
func (p *RecordingPublisher) Events() []TransactionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TransactionEvent, len(p.events))
	copy(out, p.events)
	return out
}

var (
	publisherMu       sync.RWMutex
	publisherInstance EventPublisher = NoopPublisher{}
)

// InitEventPublisher picks Kafka when brokers are configured, otherwise a no-op
func InitEventPublisher(brokers []string, topic string) EventPublisher {
	if len(brokers) == 0 {
		SetEventPublisher(NoopPublisher{})
	} else {
		SetEventPublisher(NewKafkaPublisher(brokers, topic))
	}
	return GetEventPublisher()
}

// GetEventPublisher returns the process-wide publisher
func GetEventPublisher() EventPublisher {
	publisherMu.RLock()
	defer publisherMu.RUnlock()
	return publisherInstance
}

// SetEventPublisher sets the publisher (primarily for testing)
func SetEventPublisher(p EventPublisher) {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	publisherInstance = p
}
