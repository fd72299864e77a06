package revenue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/revenue"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
)

type seed struct {
	ctx      context.Context
	products domain.ProductRepository
	orders   domain.OrderRepository
	agg      *revenue.Aggregator
}

func newSeed(t *testing.T) *seed {
	t.Helper()
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository(products)
	return &seed{
		ctx:      context.Background(),
		products: products,
		orders:   orders,
		agg:      revenue.NewAggregator(orders, products, nil),
	}
}

func (s *seed) product(t *testing.T, id, price string, archived bool) {
	t.Helper()
	require.NoError(t, s.products.Create(s.ctx, domain.Product{
		ID:         id,
		StoreID:    "store-1",
		Name:       id,
		Price:      decimal.RequireFromString(price),
		IsArchived: archived,
		CreatedAt:  time.Now().UTC(),
	}))
}

func (s *seed) order(t *testing.T, id string, paid bool, created time.Time, productIDs ...string) {
	t.Helper()
	order := domain.Order{ID: id, StoreID: "store-1", IsPaid: paid, CreatedAt: created}
	for i, pid := range productIDs {
		order.Items = append(order.Items, domain.OrderItem{
			ID:        id + "-" + string(rune('a'+i)),
			OrderID:   id,
			ProductID: pid,
		})
	}
	require.NoError(t, s.orders.Create(s.ctx, order))
}

func month(m time.Month) time.Time {
	return time.Date(2026, m, 15, 12, 0, 0, 0, time.UTC)
}

func TestTotalRevenue_SumsOnlyPaidOrders(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "10.50", false)
	s.product(t, "p2", "3", true)
	s.product(t, "p3", "100", false)

	s.order(t, "o1", true, month(time.January), "p1", "p2")
	s.order(t, "o2", true, month(time.March), "p1")
	s.order(t, "o3", false, month(time.March), "p3")

	total, err := s.agg.TotalRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("24")), "got %s", total)

	empty, err := s.agg.TotalRevenue(s.ctx, "store-2")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestGraphRevenue_TwelveBucketsSumToTotal(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "10.50", false)
	s.product(t, "p2", "4.25", false)

	s.order(t, "o1", true, month(time.January), "p1")
	s.order(t, "o2", true, month(time.January), "p2", "p2")
	s.order(t, "o3", true, month(time.December), "p1")
	s.order(t, "o4", false, month(time.June), "p1")

	graph, err := s.agg.GraphRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	require.Len(t, graph, 12)

	names := make([]string, 0, 12)
	sum := decimal.Zero
	for _, point := range graph {
		names = append(names, point.Name)
		sum = sum.Add(point.Total)
	}
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}, names)
	assert.True(t, graph[0].Total.Equal(decimal.RequireFromString("19")), "jan: %s", graph[0].Total)
	assert.True(t, graph[5].Total.IsZero())
	assert.True(t, graph[11].Total.Equal(decimal.RequireFromString("10.5")))

	total, err := s.agg.TotalRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, sum.Equal(total))
}

func TestGraphRevenue_YearsCollapseIntoSameMonth(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "5", false)

	s.order(t, "o1", true, time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), "p1")
	s.order(t, "o2", true, time.Date(2026, time.May, 31, 0, 0, 0, 0, time.UTC), "p1")

	graph, err := s.agg.GraphRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, graph[4].Total.Equal(decimal.NewFromInt(10)))
}

func TestGraphRevenue_EmptyStoreHasZeroBuckets(t *testing.T) {
	s := newSeed(t)

	graph, err := s.agg.GraphRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	require.Len(t, graph, 12)
	for _, point := range graph {
		assert.True(t, point.Total.IsZero(), point.Name)
	}
}

func TestRevenue_UsesLivePrice(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "10", false)
	s.order(t, "o1", true, month(time.April), "p1")

	p, err := s.products.Get(s.ctx, "store-1", "p1")
	require.NoError(t, err)
	p.Price = decimal.NewFromInt(15)
	require.NoError(t, s.products.Update(s.ctx, p))

	total, err := s.agg.TotalRevenue(s.ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(15)))
}

func TestStockCount_ExcludesArchived(t *testing.T) {
	s := newSeed(t)
	const n, k = 7, 3
	for i := 0; i < n; i++ {
		s.product(t, "p"+string(rune('0'+i)), "1", false)
	}
	ids := []string{"p0", "p2", "p4"}
	archived, err := s.products.ArchiveByIDs(s.ctx, ids)
	require.NoError(t, err)
	require.Equal(t, k, archived)

	stock, err := s.agg.StockCount(s.ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, n-k, stock)
}

func TestSalesCount_CountsPaidItems(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "1", false)
	s.order(t, "o1", true, month(time.February), "p1", "p1", "p1")
	s.order(t, "o2", false, month(time.February), "p1")

	sales, err := s.agg.SalesCount(s.ctx, "store-1")
	require.NoError(t, err)
	assert.Equal(t, 3, sales)
}

func TestDashboard(t *testing.T) {
	s := newSeed(t)
	s.product(t, "p1", "10.50", false)
	s.product(t, "p2", "2", true)
	s.order(t, "o1", true, month(time.July), "p1", "p2")

	dash, err := s.agg.Dashboard(s.ctx, "store-1")
	require.NoError(t, err)
	assert.True(t, dash.TotalRevenue.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 2, dash.SalesCount)
	assert.Equal(t, 1, dash.StockCount)
	require.Len(t, dash.Graph, 12)
	assert.True(t, dash.Graph[6].Total.Equal(dash.TotalRevenue))
}

type brokenOrders struct {
	domain.OrderRepository
}

func (brokenOrders) ListPaidLines(context.Context, string) ([]domain.OrderLine, error) {
	return nil, errors.New("db down")
}

func (brokenOrders) CountPaidItems(context.Context, string) (int, error) {
	return 0, nil
}

func TestDashboard_PropagatesErrors(t *testing.T) {
	agg := revenue.NewAggregator(brokenOrders{}, memory.NewProductRepository(), nil)

	_, err := agg.Dashboard(context.Background(), "store-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
