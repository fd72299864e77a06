package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	healthcheck "github.com/vladislavdragonenkov/storeadmin/internal/health"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/payment"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"
	cfg.MetricsAddr = "127.0.0.1:0"
	return cfg
}

func TestRun_MemoryGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, testConfig()) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}

func TestRun_InvalidStorageDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = "sqlite"

	err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage driver")
}

func TestRun_AddressInUse(t *testing.T) {
	busy := httptest.NewServer(http.NotFoundHandler())
	defer busy.Close()

	cfg := testConfig()
	cfg.HTTPAddr = busy.Listener.Addr().String()

	err := Run(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewMetricsMux(t *testing.T) {
	checks := healthcheck.NewHandler("test")
	checks.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error { return nil }))
	mux := newMetricsMux(checks)

	tests := []struct {
		path     string
		wantCode int
	}{
		{path: "/metrics", wantCode: http.StatusOK},
		{path: "/healthz", wantCode: http.StatusOK},
		{path: "/livez", wantCode: http.StatusOK},
		{path: "/readyz", wantCode: http.StatusOK},
		{path: "/unknown", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestSyncServingStatus(t *testing.T) {
	var failing error
	checks := healthcheck.NewHandler("test")
	checks.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func(context.Context) error { return failing }))
	server := health.NewServer()
	ctx := context.Background()

	syncServingStatus(ctx, checks, server)
	resp, err := server.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	failing = errors.New("connection refused")
	syncServingStatus(ctx, checks, server)
	resp, err = server.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestNewPaymentProvider(t *testing.T) {
	logger := log.WithField("test", "payment")

	t.Run("mock without stripe key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StripeWebhookSecret = "whsec_local"

		provider, err := newPaymentProvider(cfg, logger)
		require.NoError(t, err)
		mock, ok := provider.(*payment.MockProvider)
		require.True(t, ok)
		assert.Equal(t, "whsec_local", mock.WebhookSecret)
	})

	t.Run("postgres without stripe key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StorageDriver = StorageDriverPostgres

		_, err := newPaymentProvider(cfg, logger)
		require.Error(t, err)
	})

	t.Run("explicit mock with postgres", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StorageDriver = StorageDriverPostgres
		cfg.PaymentProvider = PaymentProviderMock

		provider, err := newPaymentProvider(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &payment.MockProvider{}, provider)
	})

	t.Run("stripe with key", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StripeAPIKey = "sk_test_123"
		cfg.StripeWebhookSecret = "whsec_123"

		provider, err := newPaymentProvider(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &payment.StripeProvider{}, provider)
	})
}

func TestGRPCServer_HealthOverBufconn(t *testing.T) {
	grpcServer, healthServer := newGRPCServer(log.WithField("test", "grpc"))
	lis := bufconn.Listen(1 << 20)
	go func() { _ = grpcServer.Serve(lis) }()
	defer grpcServer.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	healthServer.Shutdown()
	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}
