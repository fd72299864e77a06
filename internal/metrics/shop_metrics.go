package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Результаты checkout для label result.
const (
	CheckoutCreated             = "created"
	CheckoutInvalid             = "invalid"
	CheckoutProductsUnavailable = "products_unavailable"
	CheckoutFailed              = "failed"
)

// Результаты обработки webhook для label result.
const (
	SettlementPaid             = "paid"
	SettlementIgnored          = "ignored"
	SettlementSignatureInvalid = "signature_invalid"
	SettlementInvalid          = "invalid"
	SettlementFailed           = "failed"
)

// ShopMetrics содержит метрики checkout, settlement и HTTP-слоя.
type ShopMetrics struct {
	checkoutTotal     *prometheus.CounterVec
	checkoutDuration  prometheus.Histogram
	checkoutLineItems prometheus.Histogram

	settlementTotal  *prometheus.CounterVec
	productsArchived prometheus.Counter

	timelineEvents prometheus.Counter
	outboxEvents   *prometheus.CounterVec

	requestDuration *prometheus.HistogramVec
}

// NewShopMetrics регистрирует метрики в default registry.
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShopMetricsWithRegisterer регистрирует метрики в переданном registry;
// повторная регистрация возвращает уже существующие коллекторы.
func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		checkoutTotal: register(registerer, "storeadmin_checkout_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeadmin_checkout_total",
			Help: "Checkout attempts partitioned by result",
		}, []string{"result"})),
		checkoutDuration: register(registerer, "storeadmin_checkout_duration_seconds", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeadmin_checkout_duration_seconds",
			Help:    "Duration of checkout including payment provider call",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})),
		checkoutLineItems: register(registerer, "storeadmin_checkout_line_items", prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storeadmin_checkout_line_items",
			Help:    "Number of order items per successful checkout",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		})),
		settlementTotal: register(registerer, "storeadmin_settlement_events_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeadmin_settlement_events_total",
			Help: "Payment webhook events partitioned by result",
		}, []string{"result"})),
		productsArchived: register(registerer, "storeadmin_products_archived_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeadmin_products_archived_total",
			Help: "Products archived after successful payment",
		})),
		timelineEvents: register(registerer, "storeadmin_timeline_events_total", prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storeadmin_timeline_events_total",
			Help: "Total number of order timeline events recorded",
		})),
		outboxEvents: register(registerer, "storeadmin_outbox_enqueued_total", prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storeadmin_outbox_enqueued_total",
			Help: "Domain events enqueued into the outbox",
		}, []string{"event_type"})),
		requestDuration: register(registerer, "storeadmin_http_request_duration_seconds", prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storeadmin_http_request_duration_seconds",
			Help:    "HTTP request duration per route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"})),
	}
}

// register регистрирует collector или возвращает ранее зарегистрированный того же типа.
func register[C prometheus.Collector](registerer prometheus.Registerer, name string, collector C) C {
	err := registerer.Register(collector)
	if err == nil {
		return collector
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(C)
		if !ok {
			panic(fmt.Sprintf("collector %q already registered with unexpected type", name))
		}
		return existing
	}
	panic(fmt.Sprintf("register collector %q: %v", name, err))
}

// RecordCheckout фиксирует исход checkout и его длительность.
func (m *ShopMetrics) RecordCheckout(result string, items int, duration time.Duration) {
	if m == nil {
		return
	}
	m.checkoutTotal.WithLabelValues(result).Inc()
	m.checkoutDuration.Observe(duration.Seconds())
	if result == CheckoutCreated {
		m.checkoutLineItems.Observe(float64(items))
	}
}

// RecordSettlement фиксирует исход обработки webhook.
func (m *ShopMetrics) RecordSettlement(result string) {
	if m == nil {
		return
	}
	m.settlementTotal.WithLabelValues(result).Inc()
}

// RecordProductsArchived увеличивает счётчик архивированных товаров.
func (m *ShopMetrics) RecordProductsArchived(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.productsArchived.Add(float64(n))
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *ShopMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordOutboxEvent увеличивает счётчик событий, поставленных в outbox.
func (m *ShopMetrics) RecordOutboxEvent(eventType string) {
	if m == nil {
		return
	}
	m.outboxEvents.WithLabelValues(eventType).Inc()
}

// ObserveRequest записывает длительность HTTP-запроса.
func (m *ShopMetrics) ObserveRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}
