package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Image — картинка товара; URL хранится как есть, без проверки CDN.
type Image struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product — товар магазина.
// IsArchived=true снимает товар с витрины и делает его недоступным для checkout.
type Product struct {
	ID         string          `json:"id"`
	StoreID    string          `json:"storeId"`
	CategoryID string          `json:"categoryId"`
	SizeID     string          `json:"sizeId"`
	ColorID    string          `json:"colorId"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	IsFeatured bool            `json:"isFeatured"`
	IsArchived bool            `json:"isArchived"`
	Images     []Image         `json:"images"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Purchasable сообщает, можно ли купить товар.
func (p Product) Purchasable() bool {
	return !p.IsArchived
}

// ProductFilter задаёт фильтры витринного списка товаров.
// Пустое поле означает отсутствие фильтра.
type ProductFilter struct {
	CategoryID      string
	ColorID         string
	SizeID          string
	FeaturedOnly    bool
	IncludeArchived bool
}

// Match проверяет товар на соответствие фильтру.
func (f ProductFilter) Match(p Product) bool {
	if !f.IncludeArchived && p.IsArchived {
		return false
	}
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.ColorID != "" && p.ColorID != f.ColorID {
		return false
	}
	if f.SizeID != "" && p.SizeID != f.SizeID {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	return true
}

func (p Product) ScopeID() string  { return p.StoreID }
func (p Product) EntityID() string { return p.ID }
