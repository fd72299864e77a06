// Package checkout собирает заказ из корзины витрины и открывает hosted-сессию оплаты.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
)

// DefaultCurrency используется, если валюта не задана в конфигурации.
const DefaultCurrency = "SGD"

var minorUnits = decimal.NewFromInt(100)

// Config задаёт параметры, общие для всех сессий оплаты процесса.
type Config struct {
	// FrontendStoreURL задаёт базовый URL витрины для редиректов после оплаты.
	FrontendStoreURL string
	Currency         string
}

// Result описывает итог успешного checkout.
type Result struct {
	OrderID string `json:"-"`
	URL     string `json:"url"`
}

// Service — Checkout Session Builder.
type Service struct {
	products domain.ProductRepository
	orders   domain.OrderRepository
	provider domain.PaymentProvider
	events   *lifecycle.Recorder
	metrics  *metrics.ShopMetrics
	cfg      Config
	logger   *log.Entry
	now      func() time.Time
}

// NewService создаёт сервис checkout. events и m могут быть nil.
func NewService(
	products domain.ProductRepository,
	orders domain.OrderRepository,
	provider domain.PaymentProvider,
	events *lifecycle.Recorder,
	m *metrics.ShopMetrics,
	cfg Config,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	cfg.FrontendStoreURL = strings.TrimRight(cfg.FrontendStoreURL, "/")
	return &Service{
		products: products,
		orders:   orders,
		provider: provider,
		events:   events,
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Checkout проверяет товары, создаёт неоплаченный заказ и запрашивает сессию оплаты.
// Повтор id в productIDs даёт расхождение числа найденных товаров и отклоняется.
// Если провайдер вернул ошибку, заказ остаётся неоплаченным и в выручку не попадает.
func (s *Service) Checkout(ctx context.Context, storeID string, productIDs []string) (Result, error) {
	start := time.Now()
	result, err := s.checkout(ctx, storeID, productIDs)
	s.metrics.RecordCheckout(checkoutResult(err), len(productIDs), time.Since(start))
	return result, err
}

func (s *Service) checkout(ctx context.Context, storeID string, productIDs []string) (Result, error) {
	if strings.TrimSpace(storeID) == "" {
		return Result{}, domain.Invalid("Store id is required")
	}
	if len(productIDs) == 0 {
		return Result{}, domain.Invalid("Product ids are required")
	}
	for _, id := range productIDs {
		if strings.TrimSpace(id) == "" {
			return Result{}, domain.Invalid("Product ids are required")
		}
	}

	found, err := s.products.FindByIDs(ctx, storeID, productIDs)
	if err != nil {
		return Result{}, domain.Internal(err)
	}
	if len(found) != len(productIDs) {
		return Result{}, domain.ErrProductsUnavailable
	}
	for _, p := range found {
		if !p.Purchasable() {
			return Result{}, domain.ErrProductsUnavailable
		}
	}

	order := s.newOrder(storeID, productIDs)
	if err := s.orders.Create(ctx, order); err != nil {
		return Result{}, domain.Internal(err)
	}
	logger := s.logger.WithFields(log.Fields{"order_id": order.ID, "store_id": storeID})
	logger.WithField("items", len(order.Items)).Info("order created")

	s.events.Record(ctx, lifecycle.Event{
		OrderID:  order.ID,
		Timeline: domain.TimelineOrderCreated,
		Outbox:   domain.OutboxEventOrderCreated,
		Payload: map[string]any{
			"store_id":    storeID,
			"product_ids": productIDs,
		},
	})

	session, err := s.provider.CreateCheckoutSession(ctx, s.sessionRequest(order.ID, found))
	if err != nil {
		logger.WithError(err).Error("create checkout session failed")
		return Result{}, domain.Internal(err)
	}
	logger.WithField("session_id", session.ID).Info("checkout session created")

	return Result{OrderID: order.ID, URL: session.URL}, nil
}

func (s *Service) newOrder(storeID string, productIDs []string) domain.Order {
	ts := s.now()
	order := domain.Order{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		IsPaid:    false,
		Items:     make([]domain.OrderItem, 0, len(productIDs)),
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	for _, id := range productIDs {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: id,
			CreatedAt: ts,
		})
	}
	return order
}

// sessionRequest строит строку счёта на каждый загруженный товар с количеством 1.
func (s *Service) sessionRequest(orderID string, products []domain.Product) domain.CheckoutSessionRequest {
	lines := make([]domain.CheckoutLineItem, 0, len(products))
	for _, p := range products {
		lines = append(lines, domain.CheckoutLineItem{
			Name:            p.Name,
			UnitAmountMinor: ToMinorUnits(p.Price),
			Quantity:        1,
		})
	}

	return domain.CheckoutSessionRequest{
		Currency:              s.cfg.Currency,
		LineItems:             lines,
		Mode:                  domain.PaymentModeSingle,
		RequireBillingAddress: true,
		CollectPhone:          true,
		SuccessURL:            s.cfg.FrontendStoreURL + "/cart?success=1",
		CancelURL:             s.cfg.FrontendStoreURL + "/cart?canceled=1",
		Metadata:              map[string]string{domain.MetadataOrderID: orderID},
	}
}

// ToMinorUnits переводит цену в центы; доли цента округляются до ближайшего целого.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(minorUnits).Round(0).IntPart()
}

func checkoutResult(err error) string {
	switch {
	case err == nil:
		return metrics.CheckoutCreated
	case errors.Is(err, domain.ErrProductsUnavailable):
		return metrics.CheckoutProductsUnavailable
	case domain.KindOf(err) == domain.KindInvalidRequest:
		return metrics.CheckoutInvalid
	default:
		return metrics.CheckoutFailed
	}
}
