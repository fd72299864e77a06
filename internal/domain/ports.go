package domain

import (
	"context"
	"time"
)

// StoreRepository описывает хранилище магазинов.
type StoreRepository interface {
	Create(ctx context.Context, store Store) error
	Get(ctx context.Context, id string) (Store, error)
	// FindByOwner возвращает магазин, только если им владеет userID; иначе ErrStoreNotFound.
	FindByOwner(ctx context.Context, id, userID string) (Store, error)
	ListByOwner(ctx context.Context, userID string) ([]Store, error)
	// Rename и Delete работают как update/delete-many по (id, userID) и возвращают число затронутых записей.
	Rename(ctx context.Context, id, userID, name string) (int, error)
	Delete(ctx context.Context, id, userID string) (int, error)
}

// CatalogRepository — общее хранилище для простых сущностей магазина
// (билборды, категории, размеры, цвета).
type CatalogRepository[T Scoped] interface {
	Create(ctx context.Context, entity T) error
	Get(ctx context.Context, storeID, id string) (T, error)
	List(ctx context.Context, storeID string) ([]T, error)
	Update(ctx context.Context, entity T) error
	Delete(ctx context.Context, storeID, id string) (int, error)
}

type (
	BillboardRepository = CatalogRepository[Billboard]
	CategoryRepository  = CatalogRepository[Category]
	SizeRepository      = CatalogRepository[Size]
	ColorRepository     = CatalogRepository[Color]
)

// ProductRepository описывает хранилище товаров и их изображений.
type ProductRepository interface {
	Create(ctx context.Context, product Product) error
	Get(ctx context.Context, storeID, id string) (Product, error)
	List(ctx context.Context, storeID string, filter ProductFilter) ([]Product, error)
	// FindByIDs возвращает существующие товары магазина из набора ids (включая архивные).
	FindByIDs(ctx context.Context, storeID string, ids []string) ([]Product, error)
	// Update перезаписывает поля товара и заменяет набор изображений.
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, storeID, id string) (int, error)
	// ArchiveByIDs массово выставляет isArchived=true.
	ArchiveByIDs(ctx context.Context, ids []string) (int, error)
	// CountAvailable считает товары магазина с isArchived=false.
	CountAvailable(ctx context.Context, storeID string) (int, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет заказ вместе с позициями.
	Create(ctx context.Context, order Order) error
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(ctx context.Context, id string) (Order, error)
	ListByStore(ctx context.Context, storeID string) ([]Order, error)
	// MarkPaid выставляет isPaid=true, адрес и телефон; повторный вызов безопасен.
	MarkPaid(ctx context.Context, id, phone, address string) (Order, error)
	// Update применяет правки администратора (телефон, адрес, статус оплаты).
	Update(ctx context.Context, order Order) error
	Delete(ctx context.Context, storeID, id string) (int, error)
	// ListPaidLines возвращает позиции оплаченных заказов магазина с текущими ценами товаров.
	ListPaidLines(ctx context.Context, storeID string) ([]OrderLine, error)
	// CountPaidItems считает позиции оплаченных заказов магазина.
	CountPaidItems(ctx context.Context, storeID string) (int, error)
}

// PaymentProvider — внешний провайдер hosted checkout.
type PaymentProvider interface {
	// CreateCheckoutSession создаёт сессию оплаты и возвращает URL для редиректа.
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
	// ParseWebhookEvent проверяет подпись по сырому телу и декодирует событие.
	ParseWebhookEvent(payload []byte, signature string) (PaymentEvent, error)
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// TimelineRepository хранит события жизненного цикла заказа.
type TimelineRepository interface {
	Append(ctx context.Context, event TimelineEvent) error
	List(ctx context.Context, orderID string) ([]TimelineEvent, error)
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(ctx context.Context, key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	MarkDone(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	MarkFailed(ctx context.Context, key string, responseBody []byte, httpStatus int) error
	// Delete удаляет запись; отсутствующий ключ не считается ошибкой.
	Delete(ctx context.Context, key string) error
	DeleteExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

const (
	// AggregateOrder — тип агрегата для событий заказа.
	AggregateOrder = "order"
	// OutboxEventOrderCreated публикуется после checkout.
	OutboxEventOrderCreated = "order.created"
	// OutboxEventOrderPaid публикуется после settlement.
	OutboxEventOrderPaid = "order.paid"
)
