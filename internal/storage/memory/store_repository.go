package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// storeRepositoryInMemory реализует StoreRepository в памяти.
type storeRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Store
}

// NewStoreRepository возвращает in-memory репозиторий магазинов.
func NewStoreRepository() domain.StoreRepository {
	return &storeRepositoryInMemory{items: make(map[string]domain.Store)}
}

func (r *storeRepositoryInMemory) Create(_ context.Context, store domain.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[store.ID]; exists {
		return domain.ErrDuplicateID
	}
	r.items[store.ID] = store
	return nil
}

func (r *storeRepositoryInMemory) Get(_ context.Context, id string) (domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.items[id]
	if !ok {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return store, nil
}

func (r *storeRepositoryInMemory) FindByOwner(_ context.Context, id, userID string) (domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.items[id]
	if !ok || store.UserID != userID {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return store, nil
}

func (r *storeRepositoryInMemory) ListByOwner(_ context.Context, userID string) ([]domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Store, 0)
	for _, store := range r.items {
		if store.UserID == userID {
			result = append(result, store)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *storeRepositoryInMemory) Rename(_ context.Context, id, userID, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.items[id]
	if !ok || store.UserID != userID {
		return 0, nil
	}
	store.Name = name
	store.UpdatedAt = now()
	r.items[id] = store
	return 1, nil
}

func (r *storeRepositoryInMemory) Delete(_ context.Context, id, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.items[id]
	if !ok || store.UserID != userID {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

var _ domain.StoreRepository = (*storeRepositoryInMemory)(nil)
