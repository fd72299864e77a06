package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer, если заданы брокеры. Пустой список отключает публикацию: nil, nil.
func initKafkaProducer(brokers []string, logger *log.Entry) (*kafka.Producer, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers)
	if err != nil {
		return nil, err
	}

	logger.WithField("brokers", brokers).Info("kafka producer initialized")
	return producer, nil
}

// outboxPublishers возвращает publisher основного topic и DLQ.
// Без producer оба результата равны nil, и outbox-воркер не стартует.
func outboxPublishers(producer *kafka.Producer, cfg Config) (main, dlq domain.OutboxPublisher) {
	if producer == nil {
		return nil, nil
	}
	publisher := kafka.NewOutboxPublisher(producer, cfg.KafkaTopic)
	return publisher, kafka.NewDLQPublisher(producer, cfg.KafkaDLQTopic, publisher.Topic())
}

func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
