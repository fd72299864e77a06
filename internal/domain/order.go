package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem — ссылка заказа на товар, без количества.
// ProductID — слабая ссылка: товар может быть архивирован, позиция остаётся.
type OrderItem struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	ProductID string    `json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order агрегирует состояние заказа и его позиции.
type Order struct {
	ID        string      `json:"id"`
	StoreID   string      `json:"storeId"`
	IsPaid    bool        `json:"isPaid"`
	Phone     string      `json:"phone"`
	Address   string      `json:"address"`
	Items     []OrderItem `json:"orderItems"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// ProductIDs возвращает идентификаторы товаров позиций в порядке позиций.
func (o Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ValidateInvariants проверяет базовые инварианты нового заказа.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.StoreID == "" {
		errs = append(errs, ErrStoreIDRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	for _, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ErrItemProductRequired)
			break
		}
	}

	return errs
}

// OrderLine описывает позицию оплаченного заказа с текущей ценой товара.
// Цена не фиксируется на момент заказа: изменение цены товара меняет историческую выручку.
type OrderLine struct {
	OrderID   string
	ProductID string
	Price     decimal.Decimal
	OrderedAt time.Time
}

// PostalAddress хранит адрес доставки из данных покупателя у провайдера.
// nil означает отсутствующее поле.
type PostalAddress struct {
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
}

// String склеивает присутствующие поля через ", " в фиксированном порядке.
func (a PostalAddress) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []*string{a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country} {
		if p == nil {
			continue
		}
		parts = append(parts, *p)
	}
	return strings.Join(parts, ", ")
}
