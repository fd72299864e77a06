// Package settlement обрабатывает подписанные webhook-события провайдера оплаты.
package settlement

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
)

// Handler — Settlement Handler: отмечает заказ оплаченным и снимает его товары с продажи.
type Handler struct {
	provider domain.PaymentProvider
	orders   domain.OrderRepository
	products domain.ProductRepository
	events   *lifecycle.Recorder
	metrics  *metrics.ShopMetrics
	logger   *log.Entry
}

// NewHandler создаёт обработчик webhook.
func NewHandler(
	provider domain.PaymentProvider,
	orders domain.OrderRepository,
	products domain.ProductRepository,
	events *lifecycle.Recorder,
	m *metrics.ShopMetrics,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.WithField("component", "settlement")
	}
	return &Handler{
		provider: provider,
		orders:   orders,
		products: products,
		events:   events,
		metrics:  m,
		logger:   logger,
	}
}

// Handle проверяет подпись по сырому телу и применяет событие.
// Повторная доставка того же события даёт то же конечное состояние;
// события outbox и timeline пишутся только при первом переходе в оплаченный.
func (h *Handler) Handle(ctx context.Context, payload []byte, signature string) error {
	event, err := h.provider.ParseWebhookEvent(payload, signature)
	if err != nil {
		h.metrics.RecordSettlement(metrics.SettlementSignatureInvalid)
		if domain.KindOf(err) == domain.KindSignatureInvalid {
			return err
		}
		return domain.SignatureInvalid(err)
	}

	switch ev := event.(type) {
	case domain.CheckoutSessionCompleted:
		err = h.settle(ctx, ev)
		h.metrics.RecordSettlement(settlementResult(err))
		return err
	default:
		h.logger.WithFields(log.Fields{"event_id": event.EventID(), "event_type": event.EventType()}).Debug("webhook event ignored")
		h.metrics.RecordSettlement(metrics.SettlementIgnored)
		return nil
	}
}

func (h *Handler) settle(ctx context.Context, ev domain.CheckoutSessionCompleted) error {
	if strings.TrimSpace(ev.OrderID) == "" {
		return domain.Invalid("Order id is missing in session metadata")
	}
	logger := h.logger.WithFields(log.Fields{"event_id": ev.ID, "order_id": ev.OrderID})

	before, err := h.orders.Get(ctx, ev.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			logger.Warn("webhook references unknown order")
			return err
		}
		return domain.Internal(err)
	}

	order, err := h.orders.MarkPaid(ctx, ev.OrderID, ev.Phone, ev.Address.String())
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		return domain.Internal(err)
	}

	productIDs := order.ProductIDs()
	archived := 0
	if len(productIDs) > 0 {
		archived, err = h.products.ArchiveByIDs(ctx, productIDs)
		if err != nil {
			return domain.Internal(err)
		}
	}
	if before.IsPaid {
		logger.Info("order already paid, settlement replayed")
		return nil
	}
	h.metrics.RecordProductsArchived(archived)
	logger.WithField("archived", archived).Info("order settled")

	h.events.Record(ctx, lifecycle.Event{
		OrderID:  order.ID,
		Timeline: domain.TimelineOrderPaid,
		Outbox:   domain.OutboxEventOrderPaid,
		Payload: map[string]any{
			"store_id":             order.StoreID,
			"session_id":           ev.SessionID,
			"archived_product_ids": productIDs,
		},
	})
	return nil
}

func settlementResult(err error) string {
	switch domain.KindOf(err) {
	case "":
		return metrics.SettlementPaid
	case domain.KindInvalidRequest, domain.KindNotFound:
		return metrics.SettlementInvalid
	default:
		return metrics.SettlementFailed
	}
}
