package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// StoreInput описывает тело создания и переименования магазина.
type StoreInput struct {
	Name string `json:"name" validate:"required" label:"Name"`
}

// CreateStore создаёт магазин, владельцем становится вызывающий пользователь.
func (s *Service) CreateStore(ctx context.Context, userID string, in StoreInput) (domain.Store, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Store{}, domain.ErrUnauthenticated
	}
	if err := s.validateInput(in); err != nil {
		return domain.Store{}, err
	}

	ts := s.now()
	store := domain.Store{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.repos.Stores.Create(ctx, store); err != nil {
		return domain.Store{}, repoErr(err)
	}
	s.logger.WithFields(log.Fields{"store_id": store.ID, "user_id": userID}).Info("store created")
	return store, nil
}

// ListStores возвращает магазины пользователя.
func (s *Service) ListStores(ctx context.Context, userID string) ([]domain.Store, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	stores, err := s.repos.Stores.ListByOwner(ctx, userID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return stores, nil
}

// GetStore возвращает магазин по ID.
func (s *Service) GetStore(ctx context.Context, storeID string) (domain.Store, error) {
	if err := requireID(storeID, "Store id"); err != nil {
		return domain.Store{}, err
	}
	store, err := s.repos.Stores.Get(ctx, storeID)
	if err != nil {
		return domain.Store{}, repoErr(err)
	}
	return store, nil
}

// RenameStore переименовывает магазин владельца; для чужого магазина изменений ноль.
func (s *Service) RenameStore(ctx context.Context, userID, storeID string, in StoreInput) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrUnauthenticated
	}
	if err := s.validateInput(in); err != nil {
		return 0, err
	}
	if err := requireID(storeID, "Store id"); err != nil {
		return 0, err
	}
	n, err := s.repos.Stores.Rename(ctx, storeID, userID, in.Name)
	if err != nil {
		return 0, domain.Internal(err)
	}
	return n, nil
}

// DeleteStore удаляет магазин владельца.
func (s *Service) DeleteStore(ctx context.Context, userID, storeID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrUnauthenticated
	}
	if err := requireID(storeID, "Store id"); err != nil {
		return 0, err
	}
	n, err := s.repos.Stores.Delete(ctx, storeID, userID)
	if err != nil {
		return 0, domain.Internal(err)
	}
	return n, nil
}
