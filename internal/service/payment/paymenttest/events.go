// Package paymenttest собирает события провайдера оплаты для тестов.
package paymenttest

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// EventPayload собирает JSON события в формате Stripe.
func EventPayload(eventID, eventType string, object map[string]any) []byte {
	body, _ := json.Marshal(map[string]any{
		"id":          eventID,
		"object":      "event",
		"api_version": "2023-10-16",
		"type":        eventType,
		"data":        map[string]any{"object": object},
	})
	return body
}

// CompletedEventPayload собирает событие checkout.session.completed.
// Пустой orderID не попадает в metadata; nil address означает отсутствие адреса у покупателя.
func CompletedEventPayload(eventID, orderID string, phone *string, address map[string]*string) []byte {
	metadata := map[string]string{}
	if orderID != "" {
		metadata[domain.MetadataOrderID] = orderID
	}

	details := map[string]any{"phone": phone}
	if address != nil {
		details["address"] = address
	}

	return EventPayload(eventID, domain.EventTypeCheckoutSessionCompleted, map[string]any{
		"id":               "cs_" + eventID,
		"object":           "checkout.session",
		"metadata":         metadata,
		"customer_details": details,
	})
}

// SignatureHeader подписывает payload так же, как провайдер.
func SignatureHeader(payload []byte, secret string, ts time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: ts,
	})
	return signed.Header
}
