package domain

import (
	"strings"
	"time"
)

const (
	// Заказ создан при checkout.
	TimelineOrderCreated = "OrderCreated"
	// Оплата подтверждена webhook'ом провайдера.
	TimelineOrderPaid = "OrderPaid"
	// Заказ изменён администратором.
	TimelineOrderUpdated = "OrderUpdated"
)

// TimelineEvent описывает событие в жизненном цикле заказа.
type TimelineEvent struct {
	OrderID  string    `json:"orderId"`
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

// Validate проверяет обязательные поля события.
func (e TimelineEvent) Validate() error {
	if strings.TrimSpace(e.OrderID) == "" || strings.TrimSpace(e.Type) == "" {
		return ErrTimelineEventInvalid
	}
	return nil
}
