package domain

// PaymentMode — режим hosted checkout у провайдера.
type PaymentMode string

const (
	PaymentModeSingle PaymentMode = "payment"
)

// MetadataOrderID — ключ метаданных сессии, по которому webhook находит заказ.
const MetadataOrderID = "orderId"

// CheckoutLineItem описывает строку счёта для провайдера.
type CheckoutLineItem struct {
	Name string
	// Цена за единицу в минимальных единицах валюты (центы).
	UnitAmountMinor int64
	Quantity        int64
}

// CheckoutSessionRequest описывает запрос hosted-сессии оплаты.
type CheckoutSessionRequest struct {
	Currency              string
	LineItems             []CheckoutLineItem
	Mode                  PaymentMode
	RequireBillingAddress bool
	CollectPhone          bool
	SuccessURL            string
	CancelURL             string
	Metadata              map[string]string
}

// CheckoutSession описывает созданную у провайдера сессию.
type CheckoutSession struct {
	ID  string
	URL string
}

// PaymentEvent — проверенное событие провайдера. Закрытый набор вариантов:
// CheckoutSessionCompleted и IgnoredPaymentEvent.
type PaymentEvent interface {
	EventID() string
	EventType() string
	isPaymentEvent()
}

const EventTypeCheckoutSessionCompleted = "checkout.session.completed"

// CheckoutSessionCompleted — покупатель успешно завершил hosted checkout.
type CheckoutSessionCompleted struct {
	ID        string
	SessionID string
	OrderID   string
	Phone     string
	Address   PostalAddress
}

func (e CheckoutSessionCompleted) EventID() string   { return e.ID }
func (e CheckoutSessionCompleted) EventType() string { return EventTypeCheckoutSessionCompleted }
func (CheckoutSessionCompleted) isPaymentEvent()     {}

// IgnoredPaymentEvent — любое другое проверенное событие; подтверждается без побочных эффектов.
type IgnoredPaymentEvent struct {
	ID   string
	Type string
}

func (e IgnoredPaymentEvent) EventID() string   { return e.ID }
func (e IgnoredPaymentEvent) EventType() string { return e.Type }
func (IgnoredPaymentEvent) isPaymentEvent()     {}
