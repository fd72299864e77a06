package payment

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// StripeConfig задаёт параметры интеграции со Stripe.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	// Backends переопределяет HTTP-бэкенды клиента (используется в тестах).
	Backends *stripe.Backends
}

// StripeProvider реализует domain.PaymentProvider поверх Stripe Checkout.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	logger        *log.Entry
}

// NewStripeProvider создаёт провайдера; ключ и секрет webhook обязательны.
func NewStripeProvider(cfg StripeConfig, logger *log.Entry) (*StripeProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("stripe api key is required")
	}
	if cfg.WebhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	if logger == nil {
		logger = log.WithField("component", "stripe-provider")
	}

	return &StripeProvider{
		api:           client.New(cfg.APIKey, cfg.Backends),
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
	}, nil
}

// CreateCheckoutSession создаёт hosted checkout сессию.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (domain.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(req.Mode)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	if req.RequireBillingAddress {
		params.BillingAddressCollection = stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired))
	}
	if req.CollectPhone {
		params.PhoneNumberCollection = &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		}
	}
	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(item.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(item.UnitAmountMinor),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	session, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.WithError(err).WithField("line_items", len(req.LineItems)).Error("stripe checkout session create failed")
		return domain.CheckoutSession{}, fmt.Errorf("create stripe checkout session: %w", err)
	}

	p.logger.WithField("session_id", session.ID).Debug("stripe checkout session created")
	return domain.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// ParseWebhookEvent проверяет подпись Stripe и декодирует событие.
func (p *StripeProvider) ParseWebhookEvent(payload []byte, signature string) (domain.PaymentEvent, error) {
	return ParseEvent(payload, signature, p.webhookSecret)
}

var _ domain.PaymentProvider = (*StripeProvider)(nil)
