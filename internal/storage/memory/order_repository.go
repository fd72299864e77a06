package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// orderRepositoryInMemory реализует OrderRepository в памяти.
// Цены для выручки читаются из репозитория товаров в момент запроса.
type orderRepositoryInMemory struct {
	mu       sync.RWMutex
	items    map[string]domain.Order
	products domain.ProductRepository
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository(products domain.ProductRepository) domain.OrderRepository {
	return &orderRepositoryInMemory{
		items:    make(map[string]domain.Order),
		products: products,
	}
}

// Create сохраняет новый заказ, если ID ещё не занят.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[order.ID]; exists {
		return domain.ErrDuplicateID
	}
	r.items[order.ID] = cloneOrder(order)
	return nil
}

// Get возвращает заказ или ErrOrderNotFound, если его нет.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// ListByStore возвращает заказы магазина, новые первыми.
func (r *orderRepositoryInMemory) ListByStore(_ context.Context, storeID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.StoreID != storeID {
			continue
		}
		result = append(result, cloneOrder(order))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *orderRepositoryInMemory) MarkPaid(_ context.Context, id, phone, address string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.IsPaid = true
	order.Phone = phone
	order.Address = address
	order.UpdatedAt = now()
	r.items[id] = order
	return cloneOrder(order), nil
}

// Update перезаписывает редактируемые поля; позиции заказа не меняются.
func (r *orderRepositoryInMemory) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok || current.StoreID != order.StoreID {
		return domain.ErrOrderNotFound
	}
	current.Phone = order.Phone
	current.Address = order.Address
	current.IsPaid = order.IsPaid
	current.UpdatedAt = now()
	r.items[order.ID] = current
	return nil
}

func (r *orderRepositoryInMemory) Delete(_ context.Context, storeID, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.items[id]
	if !ok || order.StoreID != storeID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

// ListPaidLines собирает позиции оплаченных заказов; позиции удалённых товаров пропускаются.
func (r *orderRepositoryInMemory) ListPaidLines(ctx context.Context, storeID string) ([]domain.OrderLine, error) {
	paid := r.paidOrders(storeID)

	ids := make([]string, 0)
	for _, order := range paid {
		ids = append(ids, order.ProductIDs()...)
	}
	if len(ids) == 0 {
		return []domain.OrderLine{}, nil
	}

	products, err := r.products.FindByIDs(ctx, storeID, ids)
	if err != nil {
		return nil, fmt.Errorf("load products for paid lines: %w", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]domain.OrderLine, 0, len(ids))
	for _, order := range paid {
		for _, item := range order.Items {
			product, ok := byID[item.ProductID]
			if !ok {
				continue
			}
			lines = append(lines, domain.OrderLine{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Price:     product.Price,
				OrderedAt: order.CreatedAt,
			})
		}
	}
	return lines, nil
}

func (r *orderRepositoryInMemory) CountPaidItems(_ context.Context, storeID string) (int, error) {
	count := 0
	for _, order := range r.paidOrders(storeID) {
		count += len(order.Items)
	}
	return count, nil
}

func (r *orderRepositoryInMemory) paidOrders(storeID string) []domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.items {
		if order.StoreID == storeID && order.IsPaid {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func cloneOrder(src domain.Order) domain.Order {
	dst := src
	dst.Items = append([]domain.OrderItem(nil), src.Items...)
	return dst
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
