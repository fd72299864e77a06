package domain

import "errors"

// Kind классифицирует ошибку для отображения на границе транспорта.
type Kind string

const (
	// KindInvalidRequest означает отсутствующие или некорректные входные данные.
	KindInvalidRequest Kind = "invalid_request"
	// KindUnauthenticated означает, что у запроса нет идентификатора пользователя.
	KindUnauthenticated Kind = "unauthenticated"
	// KindUnauthorized означает, что пользователь не владеет магазином.
	KindUnauthorized Kind = "unauthorized"
	// KindProductsUnavailable — при checkout часть товаров архивирована или не существует.
	KindProductsUnavailable Kind = "products_unavailable"
	// KindSignatureInvalid — подпись webhook не прошла проверку.
	KindSignatureInvalid Kind = "signature_invalid"
	// KindNotFound — сущность не найдена.
	KindNotFound Kind = "not_found"
	// KindPayloadTooLarge означает тело запроса больше допустимого размера.
	KindPayloadTooLarge Kind = "payload_too_large"
	// KindConflict — конфликт состояния (например, повтор idempotency-key).
	KindConflict Kind = "conflict"
	// KindInternal — непредвиденная ошибка, детали не отдаются клиенту.
	KindInternal Kind = "internal"
)

// Error — доменная ошибка с видом и сообщением для клиента.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по виду; сентинел без сообщения совпадает с любой ошибкой того же вида.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	// Сентинелы по видам, удобны для errors.Is.
	ErrInvalidRequest      = &Error{Kind: KindInvalidRequest}
	ErrUnauthenticated     = &Error{Kind: KindUnauthenticated, Message: "Unauthenticated"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
	ErrProductsUnavailable = &Error{Kind: KindProductsUnavailable, Message: "Some of the products are no longer available."}
	ErrSignatureInvalid    = &Error{Kind: KindSignatureInvalid}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrInternal            = &Error{Kind: KindInternal, Message: "Internal error"}

	// ErrStoreNotFound возвращается, если магазин не найден.
	ErrStoreNotFound = &Error{Kind: KindNotFound, Message: "store not found"}
	// ErrBillboardNotFound возвращается, если билборд не найден.
	ErrBillboardNotFound = &Error{Kind: KindNotFound, Message: "billboard not found"}
	// ErrCategoryNotFound возвращается, если категория не найдена.
	ErrCategoryNotFound = &Error{Kind: KindNotFound, Message: "category not found"}
	// ErrSizeNotFound возвращается, если размер не найден.
	ErrSizeNotFound = &Error{Kind: KindNotFound, Message: "size not found"}
	// ErrColorNotFound возвращается, если цвет не найден.
	ErrColorNotFound = &Error{Kind: KindNotFound, Message: "color not found"}
	// ErrProductNotFound возвращается, если товар не найден.
	ErrProductNotFound = &Error{Kind: KindNotFound, Message: "product not found"}
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = &Error{Kind: KindNotFound, Message: "order not found"}
	// Ошибка повторной вставки записи с тем же ID.
	ErrDuplicateID = &Error{Kind: KindConflict, Message: "entity with this id already exists"}

	// Ошибка отсутствующего магазина у заказа.
	ErrStoreIDRequired = errors.New("store_id is required")
	// Ошибка заказа без позиций.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка события timeline без заказа или типа.
	ErrTimelineEventInvalid = errors.New("timeline event requires order_id and type")
	// Ошибка позиции заказа без товара.
	ErrItemProductRequired = errors.New("order item product_id is required")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// Invalid создаёт ошибку InvalidRequest с сообщением для клиента.
func Invalid(msg string) error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

// SignatureInvalid оборачивает причину отказа проверки подписи.
func SignatureInvalid(err error) error {
	return &Error{Kind: KindSignatureInvalid, Message: "Webhook Error", Err: err}
}

// Internal оборачивает непредвиденную ошибку.
func Internal(err error) error {
	return &Error{Kind: KindInternal, Message: "Internal error", Err: err}
}

// KindOf извлекает вид ошибки; всё нераспознанное считается Internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindInternal
}

// MessageOf возвращает сообщение для клиента. Для Internal детали скрываются.
func MessageOf(err error) string {
	var derr *Error
	if !errors.As(err, &derr) || derr.Kind == KindInternal {
		return "Internal error"
	}
	if derr.Kind == KindSignatureInvalid && derr.Err != nil {
		return "Webhook Error: " + derr.Err.Error()
	}
	if derr.Message == "" {
		return string(derr.Kind)
	}
	return derr.Message
}
