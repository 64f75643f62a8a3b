package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingPublisher(t *testing.T) {
	publisher := NewRecordingPublisher()
	event := TransactionEvent{Type: EventTransactionCompleted, TransactionID: 9}

	require.NoError(t, publisher.Publish(context.Background(), event))
	events := publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, uint(9), events[0].TransactionID)

	events[0].TransactionID = 100
	assert.Equal(t, uint(9), publisher.Events()[0].TransactionID, "Events returns a copy")

	publisher.Err = errors.New("down")
	assert.Error(t, publisher.Publish(context.Background(), event))
	assert.Len(t, publisher.Events(), 1)
}

func TestInitEventPublisher(t *testing.T) {
	previous := GetEventPublisher()
	t.Cleanup(func() { SetEventPublisher(previous) })

	publisher := InitEventPublisher(nil, "transaction-events")
	assert.IsType(t, NoopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), TransactionEvent{}))

	// kafka.Writer dials lazily, so building one needs no broker
	publisher = InitEventPublisher([]string{"localhost:9092"}, "transaction-events")
	kafkaPublisher, ok := publisher.(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "transaction-events", kafkaPublisher.topic)
	assert.NoError(t, kafkaPublisher.Close())
}

func TestNewKafkaPublisher_FlushesEachEvent(t *testing.T) {
	publisher := NewKafkaPublisher([]string{"localhost:9092"}, "transaction-events")
	t.Cleanup(func() { _ = publisher.Close() })

	assert.Equal(t, 1, publisher.writer.BatchSize)
	assert.LessOrEqual(t, publisher.writer.BatchTimeout, 10*time.Millisecond)
	assert.False(t, publisher.writer.Async, "publish errors must reach the caller")
	assert.Equal(t, kafka.RequireOne, publisher.writer.RequiredAcks)
}
