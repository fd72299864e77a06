package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

func now() time.Time { return time.Now().UTC() }

// catalogRepositoryInMemory хранит простые сущности магазина, ключом служит ID.
type catalogRepositoryInMemory[T domain.Scoped] struct {
	mu       sync.RWMutex
	items    map[string]T
	order    map[string]int64
	seq      int64
	notFound error
}

func newCatalogRepository[T domain.Scoped](notFound error) *catalogRepositoryInMemory[T] {
	return &catalogRepositoryInMemory[T]{
		items:    make(map[string]T),
		order:    make(map[string]int64),
		notFound: notFound,
	}
}

// NewBillboardRepository создаёт in-memory репозиторий билбордов.
func NewBillboardRepository() domain.BillboardRepository {
	return newCatalogRepository[domain.Billboard](domain.ErrBillboardNotFound)
}

// NewCategoryRepository создаёт in-memory репозиторий категорий.
func NewCategoryRepository() domain.CategoryRepository {
	return newCatalogRepository[domain.Category](domain.ErrCategoryNotFound)
}

// NewSizeRepository создаёт in-memory репозиторий размеров.
func NewSizeRepository() domain.SizeRepository {
	return newCatalogRepository[domain.Size](domain.ErrSizeNotFound)
}

// NewColorRepository создаёт in-memory репозиторий цветов.
func NewColorRepository() domain.ColorRepository {
	return newCatalogRepository[domain.Color](domain.ErrColorNotFound)
}

func (r *catalogRepositoryInMemory[T]) Create(_ context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := entity.EntityID()
	if _, exists := r.items[id]; exists {
		return domain.ErrDuplicateID
	}
	r.seq++
	r.items[id] = entity
	r.order[id] = r.seq
	return nil
}

func (r *catalogRepositoryInMemory[T]) Get(_ context.Context, storeID, id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, ok := r.items[id]
	if !ok || entity.ScopeID() != storeID {
		var zero T
		return zero, r.notFound
	}
	return entity, nil
}

// List возвращает сущности магазина, новые первыми.
func (r *catalogRepositoryInMemory[T]) List(_ context.Context, storeID string) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]T, 0)
	for _, entity := range r.items {
		if entity.ScopeID() == storeID {
			result = append(result, entity)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return r.order[result[i].EntityID()] > r.order[result[j].EntityID()]
	})
	return result, nil
}

func (r *catalogRepositoryInMemory[T]) Update(_ context.Context, entity T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[entity.EntityID()]
	if !ok || current.ScopeID() != entity.ScopeID() {
		return r.notFound
	}
	r.items[entity.EntityID()] = entity
	return nil
}

func (r *catalogRepositoryInMemory[T]) Delete(_ context.Context, storeID, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, ok := r.items[id]
	if !ok || entity.ScopeID() != storeID {
		return 0, nil
	}
	delete(r.items, id)
	delete(r.order, id)
	return 1, nil
}

var (
	_ domain.BillboardRepository = (*catalogRepositoryInMemory[domain.Billboard])(nil)
	_ domain.ColorRepository     = (*catalogRepositoryInMemory[domain.Color])(nil)
)
