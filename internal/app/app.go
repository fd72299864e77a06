package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storeadmin/internal/health"
	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/catalog"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/checkout"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/guard"
	httpsvc "github.com/vladislavdragonenkov/storeadmin/internal/service/http"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/outbox"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/payment"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/revenue"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/settlement"
	"github.com/vladislavdragonenkov/storeadmin/internal/version"
)

const (
	shutdownTimeout     = 5 * time.Second
	healthWatchInterval = 5 * time.Second
)

// Run поднимает HTTP API, gRPC health, сервер метрик и фоновые воркеры
// и блокируется до отмены ctx или падения одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.closeFn(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer, err := initKafkaProducer(cfg.Brokers(), logger)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
	}
	defer closeKafkaProducer(producer, logger)

	provider, err := newPaymentProvider(cfg, logger)
	if err != nil {
		return err
	}

	shopMetrics := metrics.NewShopMetrics()
	events := lifecycle.NewRecorder(deps.outboxRepo, deps.timelineRepo, shopMetrics, logger.WithField("layer", "lifecycle"))
	ownership := guard.New(deps.stores, logger.WithField("layer", "guard"))

	api := httpsvc.New(httpsvc.Deps{
		Catalog: catalog.NewService(catalog.Repositories{
			Stores:     deps.stores,
			Billboards: deps.billboards,
			Categories: deps.categories,
			Sizes:      deps.sizes,
			Colors:     deps.colors,
			Products:   deps.products,
			Orders:     deps.repo,
			Timeline:   deps.timelineRepo,
		}, ownership, events, logger.WithField("layer", "catalog")),
		Checkout: checkout.NewService(deps.products, deps.repo, provider, events, shopMetrics, checkout.Config{
			FrontendStoreURL: cfg.FrontendStoreURL,
			Currency:         cfg.Currency,
		}, logger.WithField("layer", "checkout")),
		Settlement:  settlement.NewHandler(provider, deps.repo, deps.products, events, shopMetrics, logger.WithField("layer", "settlement")),
		Revenue:     revenue.NewAggregator(deps.repo, deps.products, logger.WithField("layer", "revenue")),
		Guard:       ownership,
		Idempotency: idempotency.NewKeeper(deps.idempotencyRepo, cfg.IdempotencyTTL, logger.WithField("layer", "idempotency")),
		Metrics:     shopMetrics,
	}, logger.WithField("layer", "http"))

	healthHandler := healthcheck.NewHandler(version.Version())
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	healthHandler.RegisterChecker("outbox", outboxChecker{repo: deps.outboxRepo, maxPending: cfg.OutboxMaxPending})

	grpcServer, healthServer := newGRPCServer(logger)

	publisher, dlq := outboxPublishers(producer, cfg)
	outboxWorker := outbox.NewWorker(deps.outboxRepo, publisher,
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithDLQPublisher(dlq),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)
	cleanupWorker := idempotency.NewCleanupWorker(deps.idempotencyRepo,
		idempotency.WithLogger(logger.WithField("layer", "idempotency-cleanup")),
		idempotency.WithInterval(cfg.IdempotencyCleanupInterval),
		idempotency.WithBatchSize(cfg.IdempotencyCleanupBatchSize),
	)

	listeners, err := listen(cfg.HTTPAddr, cfg.GRPCAddr, cfg.MetricsAddr)
	if err != nil {
		return err
	}
	apiSrv := &http.Server{Handler: api, ReadHeaderTimeout: 10 * time.Second}
	metricsSrv := &http.Server{Handler: newMetricsMux(healthHandler), ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP API слушает %s", listeners[0].Addr())
		return serveHTTP(apiSrv, listeners[0])
	})
	g.Go(func() error {
		logger.Infof("gRPC сервер слушает %s", listeners[1].Addr())
		if err := grpcServer.Serve(listeners[1]); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("метрики доступны по адресу %s/metrics", listeners[2].Addr())
		return serveHTTP(metricsSrv, listeners[2])
	})
	g.Go(func() error {
		outboxWorker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		cleanupWorker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		watchHealth(gctx, healthHandler, healthServer, healthWatchInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("получен сигнал остановки, останавливаем серверы")
		healthServer.Shutdown()
		stopGRPC(grpcServer, logger)
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// newPaymentProvider создаёт провайдера, выбранного Config.Payment.
func newPaymentProvider(cfg Config, logger *log.Entry) (domain.PaymentProvider, error) {
	switch cfg.Payment() {
	case PaymentProviderMock:
		provider := payment.NewMockProvider()
		if cfg.StripeWebhookSecret != "" {
			provider.WebhookSecret = cfg.StripeWebhookSecret
		}
		logger.WithField("storage_driver", cfg.StorageDriver).Warn("using mock payment provider")
		return provider, nil
	case PaymentProviderStripe:
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.PaymentProvider)
	}

	stripe.SetAppInfo(&stripe.AppInfo{Name: version.AppName, Version: version.Version()})
	return payment.NewStripeProvider(payment.StripeConfig{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	}, logger.WithField("layer", "stripe"))
}

func newGRPCServer(logger *log.Entry) (*grpc.Server, *health.Server) {
	grpcMetrics := promgrpc.NewServerMetrics()
	if err := prometheus.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)

	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}

// watchHealth переносит агрегированный статус HTTP health checks в gRPC health.
func watchHealth(ctx context.Context, checks *healthcheck.Handler, server *health.Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		syncServingStatus(ctx, checks, server)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func syncServingStatus(ctx context.Context, checks *healthcheck.Handler, server *health.Server) {
	status := healthpb.HealthCheckResponse_SERVING
	if checks.Run(ctx).Status == healthcheck.StatusUnhealthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	server.SetServingStatus("", status)
}

func listen(addrs ...string) ([]net.Listener, error) {
	listeners := make([]net.Listener, 0, len(addrs))
	for _, addr := range addrs {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			for _, opened := range listeners {
				_ = opened.Close()
			}
			return nil, err
		}
		listeners = append(listeners, lis)
	}
	return listeners, nil
}

// newMetricsMux собирает служебные эндпоинты: /metrics, /healthz, /livez, /readyz.
func newMetricsMux(healthHandler *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func stopGRPC(srv *grpc.Server, logger *log.Entry) {
	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownTimeout):
		logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		srv.Stop()
	}
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
