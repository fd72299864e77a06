package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

func paidEvent() domain.OutboxMessage {
	return domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: domain.AggregateOrder,
		AggregateID:   "order-123",
		EventType:     domain.OutboxEventOrderPaid,
		Payload:       []byte(`{"order_id":"order-123","archived_product_ids":["p1"]}`),
	}
}

func TestOutboxPublisher_PublishEnvelope(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publishedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var env Envelope
		if err := json.Unmarshal(val, &env); err != nil {
			return err
		}
		if env.ID != "outbox-1" || env.AggregateID != "order-123" || env.EventType != domain.OutboxEventOrderPaid {
			return errors.New("unexpected envelope")
		}
		if !env.PublishedAt.Equal(publishedAt) {
			return errors.New("unexpected published_at")
		}
		return nil
	})

	publisher := NewOutboxPublisher(NewProducerWithClient(mockProducer, nil), "")
	publisher.now = func() time.Time { return publishedAt }

	require.NoError(t, publisher.Publish(context.Background(), paidEvent()))
	assert.Equal(t, TopicOrderEvents, publisher.Topic())
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_ProducerError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(NewProducerWithClient(mockProducer, nil), TopicOrderEvents)

	err := publisher.Publish(context.Background(), paidEvent())
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, mockProducer.Close())
}

func TestOutboxPublisher_NilProducer(t *testing.T) {
	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	assert.ErrorIs(t, publisher.Publish(context.Background(), paidEvent()), errPublisherNotInitialized)
}

func TestDLQPublisher_Defaults(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndSucceed()

	dlq := NewDLQPublisher(NewProducerWithClient(mockProducer, nil), "", "")
	assert.Equal(t, TopicDeadLetterQueue, dlq.Topic())
	assert.Equal(t, TopicOrderEvents, dlq.headers[HeaderOriginalTopic])

	require.NoError(t, dlq.Publish(context.Background(), paidEvent()))
	require.NoError(t, mockProducer.Close())
}

func TestNewEnvelope_EmptyPayload(t *testing.T) {
	env := NewEnvelope(domain.OutboxMessage{ID: "x"}, time.Now())
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"payload":null`)
}
