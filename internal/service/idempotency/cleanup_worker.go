package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

const (
	defaultCleanupInterval  = 10 * time.Minute
	defaultCleanupBatchSize = 500
)

var (
	cleanupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storeadmin_idempotency_cleanup_runs_total",
		Help: "Idempotency cleanup runs grouped by result.",
	}, []string{"result"})
	cleanupDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storeadmin_idempotency_cleanup_deleted_total",
		Help: "Expired idempotency keys removed by cleanup.",
	})
	cleanupLastDeleted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storeadmin_idempotency_cleanup_last_deleted",
		Help: "Keys removed during the last cleanup run.",
	})
)

// CleanupOptions задаёт параметры CleanupWorker.
type CleanupOptions struct {
	Logger    *log.Entry
	Interval  time.Duration
	BatchSize int
}

// CleanupOption настраивает CleanupWorker.
type CleanupOption func(*CleanupOptions)

func WithLogger(logger *log.Entry) CleanupOption {
	return func(o *CleanupOptions) { o.Logger = logger }
}

func WithInterval(d time.Duration) CleanupOption {
	return func(o *CleanupOptions) { o.Interval = d }
}

// WithBatchSize ограничивает число ключей, удаляемых одним запросом.
func WithBatchSize(n int) CleanupOption {
	return func(o *CleanupOptions) { o.BatchSize = n }
}

// CleanupWorker удаляет просроченные ключи checkout.
type CleanupWorker struct {
	repo   domain.IdempotencyRepository
	logger *log.Entry
	opts   CleanupOptions
	now    func() time.Time
}

func NewCleanupWorker(repo domain.IdempotencyRepository, options ...CleanupOption) *CleanupWorker {
	opts := CleanupOptions{Interval: defaultCleanupInterval, BatchSize: defaultCleanupBatchSize}
	for _, apply := range options {
		apply(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "idempotency-cleanup")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultCleanupInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultCleanupBatchSize
	}
	return &CleanupWorker{
		repo:   repo,
		logger: opts.Logger,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Run чистит ключи сразу после старта и затем раз в Interval до отмены ctx.
func (w *CleanupWorker) Run(ctx context.Context) {
	if w.repo == nil {
		w.logger.Warn("idempotency cleanup is disabled: repo is nil")
		return
	}

	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *CleanupWorker) runOnce(ctx context.Context) {
	deleted, err := w.Sweep(ctx, w.now())
	cleanupLastDeleted.Set(float64(deleted))
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		cleanupRuns.WithLabelValues("error").Inc()
		w.logger.WithError(err).Warn("idempotency cleanup failed")
		return
	}
	cleanupRuns.WithLabelValues("ok").Inc()
	if deleted > 0 {
		w.logger.WithField("deleted", deleted).Info("expired idempotency keys removed")
	}
}

// Sweep удаляет все ключи с ttl не позже before, порциями по BatchSize.
func (w *CleanupWorker) Sweep(ctx context.Context, before time.Time) (int, error) {
	if before.IsZero() {
		before = w.now()
	}

	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		deleted, err := w.repo.DeleteExpired(ctx, before, w.opts.BatchSize)
		if err != nil {
			return total, err
		}
		total += deleted
		cleanupDeleted.Add(float64(deleted))
		if deleted < w.opts.BatchSize {
			return total, nil
		}
	}
}
