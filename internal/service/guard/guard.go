// Package guard проверяет, что пользователь владеет магазином, до любой мутации.
package guard

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// Guard — Ownership Guard поверх хранилища магазинов.
type Guard struct {
	stores domain.StoreRepository
	logger *log.Entry
}

// New создаёт Guard.
func New(stores domain.StoreRepository, logger *log.Entry) *Guard {
	if logger == nil {
		logger = log.WithField("component", "ownership-guard")
	}
	return &Guard{stores: stores, logger: logger}
}

// Authorize возвращает магазин, если userID им владеет.
// Пустой userID даёт Unauthenticated, пустой storeID — InvalidRequest,
// чужой или несуществующий магазин даёт Unauthorized.
func (g *Guard) Authorize(ctx context.Context, userID, storeID string) (domain.Store, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Store{}, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(storeID) == "" {
		return domain.Store{}, domain.Invalid("Store id is required")
	}

	store, err := g.stores.FindByOwner(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			g.logger.WithFields(log.Fields{"store_id": storeID, "user_id": userID}).Debug("ownership check rejected")
			return domain.Store{}, domain.ErrUnauthorized
		}
		return domain.Store{}, domain.Internal(err)
	}
	return store, nil
}
