package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// productRepositoryInMemory реализует ProductRepository в памяти.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий товаров.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{items: make(map[string]domain.Product)}
}

func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.ID]; exists {
		return domain.ErrDuplicateID
	}
	r.items[product.ID] = cloneProduct(product)
	return nil
}

func (r *productRepositoryInMemory) Get(_ context.Context, storeID, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok || product.StoreID != storeID {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

// List возвращает товары магазина по фильтру, новые первыми.
func (r *productRepositoryInMemory) List(_ context.Context, storeID string, filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if product.StoreID != storeID || !filter.Match(product) {
			continue
		}
		result = append(result, cloneProduct(product))
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *productRepositoryInMemory) FindByIDs(_ context.Context, storeID string, ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		product, ok := r.items[id]
		if !ok || product.StoreID != storeID {
			continue
		}
		result = append(result, cloneProduct(product))
	}
	return result, nil
}

func (r *productRepositoryInMemory) Update(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok || current.StoreID != product.StoreID {
		return domain.ErrProductNotFound
	}
	product.CreatedAt = current.CreatedAt
	r.items[product.ID] = cloneProduct(product)
	return nil
}

func (r *productRepositoryInMemory) Delete(_ context.Context, storeID, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok || product.StoreID != storeID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

// ArchiveByIDs архивирует товары; уже архивные учитываются в счётчике, как в updateMany.
func (r *productRepositoryInMemory) ArchiveByIDs(_ context.Context, ids []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		product, ok := r.items[id]
		if !ok {
			continue
		}
		product.IsArchived = true
		product.UpdatedAt = now()
		r.items[id] = product
		count++
	}
	return count, nil
}

func (r *productRepositoryInMemory) CountAvailable(_ context.Context, storeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, product := range r.items {
		if product.StoreID == storeID && !product.IsArchived {
			count++
		}
	}
	return count, nil
}

func cloneProduct(src domain.Product) domain.Product {
	dst := src
	dst.Images = append([]domain.Image(nil), src.Images...)
	return dst
}

func sortNewestFirst(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID > products[j].ID
	})
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
