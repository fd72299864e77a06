package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

var errPublisherNotInitialized = errors.New("kafka outbox publisher is not initialized")

// OutboxPublisher публикует outbox-сообщения в topic; ключ партиционирования — id заказа.
type OutboxPublisher struct {
	producer *Producer
	topic    string
	headers  map[string]string
	now      func() time.Time
}

// NewOutboxPublisher создаёт publisher основного topic событий заказов.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxPublisher{producer: producer, topic: topic, now: time.Now}
}

// NewDLQPublisher создаёт publisher для сообщений, исчерпавших попытки доставки.
func NewDLQPublisher(producer *Producer, topic, originalTopic string) *OutboxPublisher {
	if topic == "" {
		topic = TopicDeadLetterQueue
	}
	if originalTopic == "" {
		originalTopic = TopicOrderEvents
	}
	p := NewOutboxPublisher(producer, topic)
	p.headers = map[string]string{HeaderOriginalTopic: originalTopic}
	return p
}

func (p *OutboxPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return errPublisherNotInitialized
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}
	value, err := json.Marshal(NewEnvelope(event, p.now()))
	if err != nil {
		return fmt.Errorf("marshal outbox envelope: %w", err)
	}

	headers := map[string]string{
		HeaderEventType: event.EventType,
		HeaderOutboxID:  event.ID,
	}
	for k, v := range p.headers {
		headers[k] = v
	}
	return p.producer.Send(ctx, p.topic, key, value, headers)
}

// Topic возвращает topic назначения.
func (p *OutboxPublisher) Topic() string { return p.topic }

var _ domain.OutboxPublisher = (*OutboxPublisher)(nil)
