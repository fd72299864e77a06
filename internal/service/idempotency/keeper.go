// Package idempotency реализует повтор запросов по Idempotency-Key и очистку просроченных ключей.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// DefaultTTL задаёт время жизни записи по ключу.
const DefaultTTL = 24 * time.Hour

var (
	// ErrKeyReused — ключ уже использован с другим телом запроса.
	ErrKeyReused = &domain.Error{Kind: domain.KindConflict, Message: "Idempotency key is already used with a different request"}
	// ErrInProgress — запрос с тем же ключом ещё выполняется.
	ErrInProgress = &domain.Error{Kind: domain.KindConflict, Message: "Request with the same idempotency key is already processing"}
)

// Response хранит ответ HTTP-обработчика.
type Response struct {
	Status int
	Body   []byte
}

// Keeper выполняет обработчик не более одного раза на ключ и отдаёт сохранённый ответ при повторе.
type Keeper struct {
	repo   domain.IdempotencyRepository
	ttl    time.Duration
	logger *log.Entry
	now    func() time.Time
}

// NewKeeper создаёт Keeper; ttl <= 0 заменяется DefaultTTL.
func NewKeeper(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) *Keeper {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.WithField("component", "idempotency")
	}
	return &Keeper{repo: repo, ttl: ttl, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Do выполняет handler для нового ключа. Для уже завершённого ключа с тем же scope и телом
// возвращает сохранённый ответ и replayed=true.
func (k *Keeper) Do(ctx context.Context, scope, key string, body []byte, handler func(context.Context) Response) (Response, bool, error) {
	key = strings.TrimSpace(key)
	if k == nil || k.repo == nil || key == "" {
		return handler(ctx), false, nil
	}
	logger := k.logger.WithFields(log.Fields{"idempotency_key": key, "scope": scope})

	record, err := k.repo.CreateProcessing(ctx, key, RequestHash(scope, body), k.now().Add(k.ttl))
	if err != nil {
		resp, replayErr := k.replay(err, record)
		if replayErr != nil {
			if domain.KindOf(replayErr) == domain.KindInternal {
				logger.WithError(err).Warn("idempotency lookup failed")
			}
			return Response{}, false, replayErr
		}
		logger.Debug("idempotent response replayed")
		return resp, true, nil
	}

	resp := handler(ctx)
	store := k.repo.MarkDone
	if resp.Status >= http.StatusBadRequest {
		store = k.repo.MarkFailed
	}
	// Запись закрывается и после отмены ctx клиентом.
	storeCtx := context.WithoutCancel(ctx)
	if err := store(storeCtx, key, resp.Body, resp.Status); err != nil {
		logger.WithError(err).Warn("failed to store idempotent response, releasing key")
		if delErr := k.repo.Delete(storeCtx, key); delErr != nil {
			logger.WithError(delErr).Error("failed to release idempotency key")
		}
	}
	return resp, false, nil
}

func (k *Keeper) replay(createErr error, record domain.IdempotencyRecord) (Response, error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		return Response{}, ErrKeyReused
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			status := record.HTTPStatus
			if status == 0 {
				status = http.StatusOK
			}
			return Response{Status: status, Body: record.ResponseBody}, nil
		case domain.IdempotencyStatusProcessing:
			return Response{}, ErrInProgress
		default:
			return Response{}, domain.Internal(errors.New("unknown idempotency record status"))
		}
	default:
		return Response{}, domain.Internal(createErr)
	}
}

// RequestHash считает sha256 от scope и сырого тела запроса.
func RequestHash(scope string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(scope))
	h.Write([]byte{':'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
