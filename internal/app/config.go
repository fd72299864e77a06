package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix задаёт префикс переменных окружения сервиса.
const EnvPrefix = "STOREADMIN_"

// StorageDriver выбирает реализацию репозиториев.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// PaymentProvider выбирает платёжного провайдера.
type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
	PaymentProviderMock   PaymentProvider = "mock"
)

// Config описывает настройки запуска. Все поля сравнимы, чтобы конфиг можно было сравнивать через ==.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// Пустой PaymentProvider выбирается по остальным настройкам, см. Payment.
	PaymentProvider     PaymentProvider
	StripeAPIKey        string
	StripeWebhookSecret string
	FrontendStoreURL    string
	Currency            string

	// KafkaBrokers содержит брокеров через запятую; пустая строка отключает публикацию.
	KafkaBrokers  string
	KafkaTopic    string
	KafkaDLQTopic string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	// При backlog больше OutboxMaxPending health-проверка outbox становится degraded.
	OutboxMaxPending int

	IdempotencyTTL              time.Duration
	IdempotencyCleanupInterval  time.Duration
	IdempotencyCleanupBatchSize int
}

// DefaultConfig возвращает настройки для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:                    ":3000",
		GRPCAddr:                    ":50051",
		MetricsAddr:                 ":9090",
		StorageDriver:               StorageDriverMemory,
		PostgresAutoMigrate:         true,
		FrontendStoreURL:            "http://localhost:3001",
		Currency:                    "SGD",
		OutboxPollInterval:          time.Second,
		OutboxBatchSize:             100,
		OutboxMaxAttempts:           3,
		OutboxRetryDelay:            50 * time.Millisecond,
		OutboxMaxPending:            1000,
		IdempotencyTTL:              24 * time.Hour,
		IdempotencyCleanupInterval:  10 * time.Minute,
		IdempotencyCleanupBatchSize: 500,
	}
}

// LoadConfig читает .env файлы (отсутствующие пропускаются) и переменные STOREADMIN_*.
// Уже выставленные переменные окружения имеют приоритет над .env.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	cfg, err := configFromEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Brokers возвращает список брокеров Kafka.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Payment возвращает провайдера оплаты. Без явного выбора mock достаётся только
// memory-хранилищу без ключа Stripe, в остальных случаях выбирается Stripe.
func (c Config) Payment() PaymentProvider {
	if c.PaymentProvider != "" {
		return c.PaymentProvider
	}
	if c.StripeAPIKey == "" && c.StorageDriver == StorageDriverMemory {
		return PaymentProviderMock
	}
	return PaymentProviderStripe
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			errs = append(errs, errors.New("postgres dsn is required for postgres storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage driver %q", c.StorageDriver))
	}
	switch c.Payment() {
	case PaymentProviderMock:
	case PaymentProviderStripe:
		if c.StripeAPIKey == "" {
			errs = append(errs, fmt.Errorf("stripe api key is required for stripe payment provider, set %sPAYMENT_PROVIDER=mock for local runs", EnvPrefix))
		} else if c.StripeWebhookSecret == "" {
			errs = append(errs, errors.New("stripe webhook secret is required with stripe api key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported payment provider %q", c.PaymentProvider))
	}
	for name, addr := range map[string]string{"http": c.HTTPAddr, "grpc": c.GRPCAddr, "metrics": c.MetricsAddr} {
		if strings.TrimSpace(addr) == "" {
			errs = append(errs, fmt.Errorf("%s address is required", name))
		}
	}
	return errors.Join(errs...)
}

type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := r.lookup(EnvPrefix + key); ok {
		*dst = strings.TrimSpace(v)
	}
}

func (r *envReader) int(key string, dst *int) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = n
}

func (r *envReader) bool(key string, dst *bool) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = b
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := r.lookup(EnvPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
		return
	}
	*dst = d
}

func configFromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	r := &envReader{lookup: lookup}

	r.str("HTTP_ADDR", &cfg.HTTPAddr)
	r.str("GRPC_ADDR", &cfg.GRPCAddr)
	r.str("METRICS_ADDR", &cfg.MetricsAddr)

	driver := string(cfg.StorageDriver)
	r.str("STORAGE_DRIVER", &driver)
	cfg.StorageDriver = StorageDriver(strings.ToLower(driver))
	r.str("POSTGRES_DSN", &cfg.PostgresDSN)
	r.bool("POSTGRES_AUTO_MIGRATE", &cfg.PostgresAutoMigrate)

	provider := string(cfg.PaymentProvider)
	r.str("PAYMENT_PROVIDER", &provider)
	cfg.PaymentProvider = PaymentProvider(strings.ToLower(provider))
	r.str("STRIPE_API_KEY", &cfg.StripeAPIKey)
	r.str("STRIPE_WEBHOOK_SECRET", &cfg.StripeWebhookSecret)
	r.str("FRONTEND_STORE_URL", &cfg.FrontendStoreURL)
	r.str("CURRENCY", &cfg.Currency)

	r.str("KAFKA_BROKERS", &cfg.KafkaBrokers)
	r.str("KAFKA_TOPIC", &cfg.KafkaTopic)
	r.str("KAFKA_DLQ_TOPIC", &cfg.KafkaDLQTopic)

	r.duration("OUTBOX_POLL_INTERVAL", &cfg.OutboxPollInterval)
	r.int("OUTBOX_BATCH_SIZE", &cfg.OutboxBatchSize)
	r.int("OUTBOX_MAX_ATTEMPTS", &cfg.OutboxMaxAttempts)
	r.duration("OUTBOX_RETRY_DELAY", &cfg.OutboxRetryDelay)
	r.int("OUTBOX_MAX_PENDING", &cfg.OutboxMaxPending)

	r.duration("IDEMPOTENCY_TTL", &cfg.IdempotencyTTL)
	r.duration("IDEMPOTENCY_CLEANUP_INTERVAL", &cfg.IdempotencyCleanupInterval)
	r.int("IDEMPOTENCY_CLEANUP_BATCH_SIZE", &cfg.IdempotencyCleanupBatchSize)

	return cfg, errors.Join(r.errs...)
}
