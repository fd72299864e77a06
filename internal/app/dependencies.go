package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storeadmin/internal/health"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/postgres"
)

// runtimeDependencies хранит репозитории выбранного storage driver.
type runtimeDependencies struct {
	stores          domain.StoreRepository
	billboards      domain.BillboardRepository
	categories      domain.CategoryRepository
	sizes           domain.SizeRepository
	colors          domain.ColorRepository
	products        domain.ProductRepository
	repo            domain.OrderRepository
	outboxRepo      domain.OutboxRepository
	timelineRepo    domain.TimelineRepository
	idempotencyRepo domain.IdempotencyRepository

	storageChecker healthcheck.Checker
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		return initMemoryDependencies(), nil
	case StorageDriverPostgres:
		return initPostgresDependencies(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initMemoryDependencies() *runtimeDependencies {
	products := memory.NewProductRepository()
	return &runtimeDependencies{
		stores:          memory.NewStoreRepository(),
		billboards:      memory.NewBillboardRepository(),
		categories:      memory.NewCategoryRepository(),
		sizes:           memory.NewSizeRepository(),
		colors:          memory.NewColorRepository(),
		products:        products,
		repo:            memory.NewOrderRepository(products),
		outboxRepo:      memory.NewOutboxRepository(),
		timelineRepo:    memory.NewTimelineRepository(),
		idempotencyRepo: memory.NewIdempotencyRepository(),
		storageChecker: healthcheck.NewSimpleChecker("storage", func(context.Context) error {
			return nil
		}),
		closeFn: func() error { return nil },
	}
}

func initPostgresDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("postgres dsn is required for postgres storage driver")
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("apply postgres migrations: %w", err)
		}
		logger.Info("postgres migrations applied")
	}

	return &runtimeDependencies{
		stores:          postgres.NewStoreRepository(store),
		billboards:      postgres.NewBillboardRepository(store),
		categories:      postgres.NewCategoryRepository(store),
		sizes:           postgres.NewSizeRepository(store),
		colors:          postgres.NewColorRepository(store),
		products:        postgres.NewProductRepository(store),
		repo:            postgres.NewOrderRepository(store),
		outboxRepo:      postgres.NewOutboxRepository(store),
		timelineRepo:    postgres.NewTimelineRepository(store),
		idempotencyRepo: postgres.NewIdempotencyRepository(store),
		storageChecker:  healthcheck.NewSimpleChecker("storage", store.Ping),
		closeFn:         store.Close,
	}, nil
}

// outboxChecker сообщает degraded, если backlog outbox превышает порог.
type outboxChecker struct {
	repo       domain.OutboxRepository
	maxPending int
}

func (c outboxChecker) Check(ctx context.Context) healthcheck.Check {
	check := healthcheck.Check{Name: "outbox", Status: healthcheck.StatusHealthy}
	stats, err := c.repo.Stats(ctx)
	switch {
	case err != nil:
		check.Status = healthcheck.StatusUnhealthy
		check.Message = err.Error()
	case c.maxPending > 0 && stats.PendingCount > c.maxPending:
		check.Status = healthcheck.StatusDegraded
		check.Message = fmt.Sprintf("%d pending records, limit %d", stats.PendingCount, c.maxPending)
	}
	return check
}
