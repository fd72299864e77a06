// Package lifecycle записывает события жизненного цикла заказа в outbox и timeline.
package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
)

// Recorder фиксирует события заказа. Ошибки записи логируются и не прерывают
// основную операцию: заказ уже сохранён, события — вспомогательные.
type Recorder struct {
	outbox   domain.OutboxRepository
	timeline domain.TimelineRepository
	metrics  *metrics.ShopMetrics
	logger   *log.Entry
	now      func() time.Time
}

// NewRecorder создаёт Recorder. outbox и timeline могут быть nil.
func NewRecorder(outbox domain.OutboxRepository, timeline domain.TimelineRepository, m *metrics.ShopMetrics, logger *log.Entry) *Recorder {
	if logger == nil {
		logger = log.WithField("component", "order-lifecycle")
	}
	return &Recorder{
		outbox:   outbox,
		timeline: timeline,
		metrics:  m,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Event описывает одно событие заказа.
type Event struct {
	OrderID string
	// Timeline задаёт тип записи в timeline; пусто, если запись не нужна.
	Timeline string
	// Outbox задаёт тип доменного события; пусто, если публикация не нужна.
	Outbox  string
	Reason  string
	Payload map[string]any
}

// Record пишет событие. Безопасен для nil-получателя.
func (r *Recorder) Record(ctx context.Context, ev Event) {
	if r == nil {
		return
	}
	occurred := r.now()
	fields := log.Fields{"order_id": ev.OrderID, "event": ev.Outbox, "timeline": ev.Timeline}

	if ev.Outbox != "" && r.outbox != nil {
		payload := make(map[string]any, len(ev.Payload)+3)
		for k, v := range ev.Payload {
			payload[k] = v
		}
		payload["order_id"] = ev.OrderID
		payload["event_type"] = ev.Outbox
		payload["ts"] = occurred.Format(time.RFC3339Nano)

		data, err := json.Marshal(payload)
		if err != nil {
			r.logger.WithError(err).WithFields(fields).Error("marshal event failed")
		} else {
			msg := domain.OutboxMessage{
				AggregateType: domain.AggregateOrder,
				AggregateID:   ev.OrderID,
				EventType:     ev.Outbox,
				Payload:       data,
			}
			if _, err := r.outbox.Enqueue(ctx, msg); err != nil {
				r.logger.WithError(err).WithFields(fields).Error("enqueue event failed")
			} else {
				r.metrics.RecordOutboxEvent(ev.Outbox)
			}
		}
	}

	if ev.Timeline != "" && r.timeline != nil {
		event := domain.TimelineEvent{
			OrderID:  ev.OrderID,
			Type:     ev.Timeline,
			Reason:   ev.Reason,
			Occurred: occurred,
		}
		if err := r.timeline.Append(ctx, event); err != nil {
			r.logger.WithError(err).WithFields(fields).Warn("append timeline event failed")
		} else {
			r.metrics.RecordTimelineEvent()
		}
	}
}
