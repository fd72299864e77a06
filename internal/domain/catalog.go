package domain

import "time"

// Store — изолированный каталог мерчанта (tenant).
type Store struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Scoped реализуют сущности, принадлежащие магазину.
type Scoped interface {
	ScopeID() string
	EntityID() string
}

// Billboard описывает маркетинговый баннер магазина.
type Billboard struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Label     string    `json:"label"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Category группирует товары и ссылается на билборд.
type Category struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId"`
	BillboardID string    `json:"billboardId"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Size struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Color.Value хранит hex-код цвета.
type Color struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b Billboard) ScopeID() string  { return b.StoreID }
func (b Billboard) EntityID() string { return b.ID }
func (c Category) ScopeID() string   { return c.StoreID }
func (c Category) EntityID() string  { return c.ID }
func (s Size) ScopeID() string       { return s.StoreID }
func (s Size) EntityID() string      { return s.ID }
func (c Color) ScopeID() string      { return c.StoreID }
func (c Color) EntityID() string     { return c.ID }
