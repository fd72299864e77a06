package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// В заголовке SignatureHeaderName провайдер передаёт подпись webhook.
const SignatureHeaderName = "Stripe-Signature"

// checkoutSessionObject содержит поля checkout.session, нужные для оплаты заказа.
type checkoutSessionObject struct {
	ID              string            `json:"id"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails *struct {
		Phone   *string `json:"phone"`
		Address *struct {
			Line1      *string `json:"line1"`
			Line2      *string `json:"line2"`
			City       *string `json:"city"`
			State      *string `json:"state"`
			PostalCode *string `json:"postal_code"`
			Country    *string `json:"country"`
		} `json:"address"`
	} `json:"customer_details"`
}

// ParseEvent проверяет подпись по сырому телу и превращает событие в доменный вариант.
// Любая ошибка проверки или разбора возвращается как SignatureInvalid.
func ParseEvent(payload []byte, signature, secret string) (domain.PaymentEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, domain.SignatureInvalid(err)
	}

	if event.Type != stripe.EventType(domain.EventTypeCheckoutSessionCompleted) {
		return domain.IgnoredPaymentEvent{ID: event.ID, Type: string(event.Type)}, nil
	}
	if event.Data == nil {
		return nil, domain.SignatureInvalid(fmt.Errorf("event %s has no data", event.ID))
	}

	var obj checkoutSessionObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, domain.SignatureInvalid(fmt.Errorf("decode checkout session: %w", err))
	}

	completed := domain.CheckoutSessionCompleted{
		ID:        event.ID,
		SessionID: obj.ID,
		OrderID:   obj.Metadata[domain.MetadataOrderID],
	}
	if details := obj.CustomerDetails; details != nil {
		if details.Phone != nil {
			completed.Phone = *details.Phone
		}
		if addr := details.Address; addr != nil {
			completed.Address = domain.PostalAddress{
				Line1:      addr.Line1,
				Line2:      addr.Line2,
				City:       addr.City,
				State:      addr.State,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
			}
		}
	}
	return completed, nil
}
