// Package revenue считает выручку и складские показатели магазина по оплаченным заказам.
package revenue

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthTotal описывает одну точку графика выручки.
type MonthTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Dashboard — данные главной страницы админки.
type Dashboard struct {
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	SalesCount   int             `json:"salesCount"`
	StockCount   int             `json:"stockCount"`
	Graph        []MonthTotal    `json:"graphRevenue"`
}

// Aggregator — Revenue Aggregator. Цены берутся текущие, без фиксации на момент заказа.
type Aggregator struct {
	orders   domain.OrderRepository
	products domain.ProductRepository
	logger   *log.Entry
}

// NewAggregator создаёт агрегатор.
func NewAggregator(orders domain.OrderRepository, products domain.ProductRepository, logger *log.Entry) *Aggregator {
	if logger == nil {
		logger = log.WithField("component", "revenue")
	}
	return &Aggregator{orders: orders, products: products, logger: logger}
}

// TotalRevenue суммирует цены товаров всех позиций оплаченных заказов магазина.
func (a *Aggregator) TotalRevenue(ctx context.Context, storeID string) (decimal.Decimal, error) {
	lines, err := a.orders.ListPaidLines(ctx, storeID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total revenue: %w", err)
	}
	return sumLines(lines), nil
}

// GraphRevenue раскладывает выручку по 12 месяцам создания заказа (UTC); годы не различаются.
// Всегда возвращает 12 точек от Jan до Dec.
func (a *Aggregator) GraphRevenue(ctx context.Context, storeID string) ([]MonthTotal, error) {
	lines, err := a.orders.ListPaidLines(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("graph revenue: %w", err)
	}
	return bucketByMonth(lines), nil
}

// StockCount считает неархивные товары магазина.
func (a *Aggregator) StockCount(ctx context.Context, storeID string) (int, error) {
	n, err := a.products.CountAvailable(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("stock count: %w", err)
	}
	return n, nil
}

// SalesCount считает позиции в оплаченных заказах магазина.
func (a *Aggregator) SalesCount(ctx context.Context, storeID string) (int, error) {
	n, err := a.orders.CountPaidItems(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("sales count: %w", err)
	}
	return n, nil
}

// Dashboard собирает все показатели параллельно.
func (a *Aggregator) Dashboard(ctx context.Context, storeID string) (Dashboard, error) {
	var (
		lines []domain.OrderLine
		out   Dashboard
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = a.orders.ListPaidLines(gctx, storeID)
		if err != nil {
			return fmt.Errorf("paid lines: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		out.SalesCount, err = a.SalesCount(gctx, storeID)
		return err
	})
	g.Go(func() error {
		var err error
		out.StockCount, err = a.StockCount(gctx, storeID)
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.WithError(err).WithField("store_id", storeID).Error("dashboard aggregation failed")
		return Dashboard{}, err
	}

	out.TotalRevenue = sumLines(lines)
	out.Graph = bucketByMonth(lines)
	return out, nil
}

func sumLines(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price)
	}
	return total
}

func bucketByMonth(lines []domain.OrderLine) []MonthTotal {
	var totals [12]decimal.Decimal
	for _, line := range lines {
		m := int(line.OrderedAt.UTC().Month()) - 1
		totals[m] = totals[m].Add(line.Price)
	}

	graph := make([]MonthTotal, 12)
	for i := range graph {
		graph[i] = MonthTotal{Name: monthNames[i], Total: totals[i]}
	}
	return graph
}
