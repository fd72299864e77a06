package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/checkout"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/payment"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
)

type CheckoutSuite struct {
	suite.Suite

	ctx      context.Context
	products domain.ProductRepository
	orders   domain.OrderRepository
	outbox   *memory.OutboxRepository
	timeline domain.TimelineRepository
	provider *payment.MockProvider
	service  *checkout.Service
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupTest() {
	s.ctx = context.Background()
	s.products = memory.NewProductRepository()
	s.orders = memory.NewOrderRepository(s.products)
	s.outbox = memory.NewOutboxRepository()
	s.timeline = memory.NewTimelineRepository()
	s.provider = payment.NewMockProvider()

	m := metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry())
	events := lifecycle.NewRecorder(s.outbox, s.timeline, m, nil)
	s.service = checkout.NewService(s.products, s.orders, s.provider, events, m, checkout.Config{
		FrontendStoreURL: "https://shop.example.com/",
	}, nil)

	s.seedProduct("p1", "store-1", "T-Shirt", "19.99", false)
	s.seedProduct("p2", "store-1", "Cap", "5", false)
	s.seedProduct("archived", "store-1", "Old Hat", "7.50", true)
	s.seedProduct("foreign", "store-2", "Other", "1", false)
}

func (s *CheckoutSuite) seedProduct(id, storeID, name, price string, archived bool) {
	s.Require().NoError(s.products.Create(s.ctx, domain.Product{
		ID:         id,
		StoreID:    storeID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		IsArchived: archived,
		CreatedAt:  time.Now().UTC(),
	}))
}

func (s *CheckoutSuite) storeOrders(storeID string) []domain.Order {
	orders, err := s.orders.ListByStore(s.ctx, storeID)
	s.Require().NoError(err)
	return orders
}

func (s *CheckoutSuite) TestEmptyProductIDsIsInvalid() {
	for _, ids := range [][]string{nil, {}, {""}} {
		_, err := s.service.Checkout(s.ctx, "store-1", ids)
		s.Equal(domain.KindInvalidRequest, domain.KindOf(err))
		s.Equal("Product ids are required", domain.MessageOf(err))
	}
	s.Empty(s.storeOrders("store-1"))
	s.Zero(s.provider.SessionCalls)
}

func (s *CheckoutSuite) TestArchivedProductIsUnavailable() {
	_, err := s.service.Checkout(s.ctx, "store-1", []string{"p1", "archived"})
	s.True(errors.Is(err, domain.ErrProductsUnavailable))
	s.Empty(s.storeOrders("store-1"))
	s.Zero(s.provider.SessionCalls)
	s.Empty(s.outbox.AllPending())
}

func (s *CheckoutSuite) TestUnknownOrForeignProductIsUnavailable() {
	for _, ids := range [][]string{{"p1", "missing"}, {"foreign"}} {
		_, err := s.service.Checkout(s.ctx, "store-1", ids)
		s.Equal(domain.KindProductsUnavailable, domain.KindOf(err))
	}
	s.Empty(s.storeOrders("store-1"))
}

func (s *CheckoutSuite) TestCreatesUnpaidOrderAndSession() {
	result, err := s.service.Checkout(s.ctx, "store-1", []string{"p1", "p2"})
	s.Require().NoError(err)
	s.NotEmpty(result.OrderID)
	s.Contains(result.URL, "/pay/cs_mock_")

	orders := s.storeOrders("store-1")
	s.Require().Len(orders, 1)
	order := orders[0]
	s.Equal(result.OrderID, order.ID)
	s.False(order.IsPaid)
	s.Empty(order.Phone)
	s.Empty(order.Address)
	s.Equal([]string{"p1", "p2"}, order.ProductIDs())

	req, ok := s.provider.LastRequest()
	s.Require().True(ok)
	s.Equal(domain.PaymentModeSingle, req.Mode)
	s.Equal(checkout.DefaultCurrency, req.Currency)
	s.True(req.RequireBillingAddress)
	s.True(req.CollectPhone)
	s.Equal("https://shop.example.com/cart?success=1", req.SuccessURL)
	s.Equal("https://shop.example.com/cart?canceled=1", req.CancelURL)
	s.Equal(order.ID, req.Metadata[domain.MetadataOrderID])
	s.Equal([]domain.CheckoutLineItem{
		{Name: "T-Shirt", UnitAmountMinor: 1999, Quantity: 1},
		{Name: "Cap", UnitAmountMinor: 500, Quantity: 1},
	}, req.LineItems)

	pending := s.outbox.AllPending()
	s.Require().Len(pending, 1)
	s.Equal(domain.OutboxEventOrderCreated, pending[0].EventType)
	s.Equal(order.ID, pending[0].AggregateID)

	events, err := s.timeline.List(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(domain.TimelineOrderCreated, events[0].Type)
}

func (s *CheckoutSuite) TestDuplicateIDsAreUnavailable() {
	for _, ids := range [][]string{{"p1", "p1"}, {"p1", "p2", "p1"}} {
		_, err := s.service.Checkout(s.ctx, "store-1", ids)
		s.True(errors.Is(err, domain.ErrProductsUnavailable), "ids %v", ids)
	}
	s.Empty(s.storeOrders("store-1"))
	s.Zero(s.provider.SessionCalls)
	s.Empty(s.outbox.AllPending())
}

func (s *CheckoutSuite) TestProviderFailureLeavesUnpaidOrder() {
	s.provider.SessionErr = errors.New("provider unavailable")

	_, err := s.service.Checkout(s.ctx, "store-1", []string{"p1"})
	s.Equal(domain.KindInternal, domain.KindOf(err))
	s.Equal("Internal error", domain.MessageOf(err))

	orders := s.storeOrders("store-1")
	s.Require().Len(orders, 1)
	s.False(orders[0].IsPaid)
}

func (s *CheckoutSuite) TestMissingStoreIDIsInvalid() {
	_, err := s.service.Checkout(s.ctx, " ", []string{"p1"})
	s.Equal(domain.KindInvalidRequest, domain.KindOf(err))
}

func TestToMinorUnits(t *testing.T) {
	cases := map[string]int64{
		"0":      0,
		"1":      100,
		"19.99":  1999,
		"0.1":    10,
		"12.345": 1235,
		"100.00": 10000,
	}
	for in, want := range cases {
		if got := checkout.ToMinorUnits(decimal.RequireFromString(in)); got != want {
			t.Fatalf("ToMinorUnits(%s) = %d, want %d", in, got, want)
		}
	}
}
