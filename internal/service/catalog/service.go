// Package catalog реализует управление каталогом магазина: магазины, билборды,
// категории, размеры, цвета, товары и заказы.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/guard"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
)

// Repositories группирует хранилища сервиса каталога.
type Repositories struct {
	Stores     domain.StoreRepository
	Billboards domain.BillboardRepository
	Categories domain.CategoryRepository
	Sizes      domain.SizeRepository
	Colors     domain.ColorRepository
	Products   domain.ProductRepository
	Orders     domain.OrderRepository
	Timeline   domain.TimelineRepository
}

// Service — операции каталога. Все мутации проходят через Ownership Guard,
// чтение доступно без идентификатора пользователя.
type Service struct {
	repos    Repositories
	guard    *guard.Guard
	events   *lifecycle.Recorder
	validate *validator.Validate
	logger   *log.Entry
	now      func() time.Time
}

// NewService создаёт сервис каталога.
func NewService(repos Repositories, g *guard.Guard, events *lifecycle.Recorder, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	if g == nil {
		g = guard.New(repos.Stores, logger)
	}
	return &Service{
		repos:    repos,
		guard:    g,
		events:   events,
		validate: newValidator(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// authorize повторяет порядок проверок мутации: идентификатор, тело запроса, владение магазином.
func (s *Service) authorize(ctx context.Context, userID, storeID string, in any) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrUnauthenticated
	}
	if in != nil {
		if err := s.validateInput(in); err != nil {
			return err
		}
	}
	_, err := s.guard.Authorize(ctx, userID, storeID)
	return err
}

func requireID(id, label string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid(label + " is required")
	}
	return nil
}

// repoErr пропускает доменные ошибки как есть, остальное превращает в Internal.
func repoErr(err error) error {
	if err == nil {
		return nil
	}
	switch domain.KindOf(err) {
	case domain.KindInternal:
		return domain.Internal(err)
	default:
		return err
	}
}

func getScoped[T domain.Scoped](ctx context.Context, repo domain.CatalogRepository[T], storeID, id, label string) (T, error) {
	var zero T
	if err := requireID(id, label); err != nil {
		return zero, err
	}
	entity, err := repo.Get(ctx, storeID, id)
	if err != nil {
		return zero, repoErr(err)
	}
	return entity, nil
}

func listScoped[T domain.Scoped](ctx context.Context, repo domain.CatalogRepository[T], storeID string) ([]T, error) {
	if err := requireID(storeID, "Store id"); err != nil {
		return nil, err
	}
	items, err := repo.List(ctx, storeID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return items, nil
}

func (s *Service) deleteScoped(ctx context.Context, userID, storeID, id, label string, del func(context.Context, string, string) (int, error)) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrUnauthenticated
	}
	if err := requireID(id, label); err != nil {
		return 0, err
	}
	if _, err := s.guard.Authorize(ctx, userID, storeID); err != nil {
		return 0, err
	}
	n, err := del(ctx, storeID, id)
	if err != nil {
		return 0, repoErr(err)
	}
	return n, nil
}

// ensureExists проверяет ссылку на сущность того же магазина.
func ensureExists[T domain.Scoped](ctx context.Context, repo domain.CatalogRepository[T], storeID, id, label string) error {
	if _, err := repo.Get(ctx, storeID, id); err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.Invalid(label + " is invalid")
		}
		return domain.Internal(err)
	}
	return nil
}
