package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// ImageInput хранит ссылку на загруженное изображение.
type ImageInput struct {
	URL string `json:"url" validate:"required" label:"Image URL"`
}

// ProductInput описывает тело создания и изменения товара.
type ProductInput struct {
	Name       string          `json:"name" validate:"required" label:"Name"`
	Price      decimal.Decimal `json:"price" validate:"gt=0" label:"Price"`
	CategoryID string          `json:"categoryId" validate:"required" label:"Category ID"`
	ColorID    string          `json:"colorId" validate:"required" label:"Color ID"`
	SizeID     string          `json:"sizeId" validate:"required" label:"Size ID"`
	Images     []ImageInput    `json:"images" validate:"required,min=1,dive" label:"Images"`
	Quantity   int             `json:"quantity" validate:"gte=0" label:"Quantity"`
	IsFeatured bool            `json:"isFeatured"`
	IsArchived bool            `json:"isArchived"`
}

// productUpdate дополнительно требует количество, как форма редактирования.
type productUpdate struct {
	ProductInput
	Quantity int `validate:"gt=0" label:"Quantity"`
}

// CreateProduct создаёт товар с изображениями.
func (s *Service) CreateProduct(ctx context.Context, userID, storeID string, in ProductInput) (domain.Product, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Product{}, err
	}
	if err := s.ensureProductRefs(ctx, storeID, in); err != nil {
		return domain.Product{}, err
	}

	ts := s.now()
	p := domain.Product{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		CreatedAt: ts,
	}
	applyProductInput(&p, in, ts)
	if err := s.repos.Products.Create(ctx, p); err != nil {
		return domain.Product{}, repoErr(err)
	}
	return p, nil
}

// GetProduct возвращает товар, включая архивный.
func (s *Service) GetProduct(ctx context.Context, storeID, id string) (domain.Product, error) {
	if err := requireID(id, "Product id"); err != nil {
		return domain.Product{}, err
	}
	p, err := s.repos.Products.Get(ctx, storeID, id)
	if err != nil {
		return domain.Product{}, repoErr(err)
	}
	return p, nil
}

// ListProducts возвращает витринный список: без архивных, новые первыми.
func (s *Service) ListProducts(ctx context.Context, storeID string, filter domain.ProductFilter) ([]domain.Product, error) {
	if err := requireID(storeID, "Store id"); err != nil {
		return nil, err
	}
	filter.IncludeArchived = false
	products, err := s.repos.Products.List(ctx, storeID, filter)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return products, nil
}

// UpdateProduct перезаписывает поля товара и заменяет набор изображений.
func (s *Service) UpdateProduct(ctx context.Context, userID, storeID, id string, in ProductInput) (domain.Product, error) {
	if err := s.authorize(ctx, userID, storeID, productUpdate{ProductInput: in, Quantity: in.Quantity}); err != nil {
		return domain.Product{}, err
	}
	p, err := s.GetProduct(ctx, storeID, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.ensureProductRefs(ctx, storeID, in); err != nil {
		return domain.Product{}, err
	}

	applyProductInput(&p, in, s.now())
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return domain.Product{}, repoErr(err)
	}
	return p, nil
}

// DeleteProduct удаляет товар; позиции заказов со ссылкой на него остаются.
func (s *Service) DeleteProduct(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Product id", s.repos.Products.Delete)
}

func (s *Service) ensureProductRefs(ctx context.Context, storeID string, in ProductInput) error {
	if err := ensureExists(ctx, s.repos.Categories, storeID, in.CategoryID, "Category ID"); err != nil {
		return err
	}
	if err := ensureExists(ctx, s.repos.Colors, storeID, in.ColorID, "Color ID"); err != nil {
		return err
	}
	return ensureExists(ctx, s.repos.Sizes, storeID, in.SizeID, "Size ID")
}

func applyProductInput(p *domain.Product, in ProductInput, ts time.Time) {
	p.Name = in.Name
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.ColorID = in.ColorID
	p.SizeID = in.SizeID
	p.Quantity = in.Quantity
	p.IsFeatured = in.IsFeatured
	p.IsArchived = in.IsArchived
	p.UpdatedAt = ts

	p.Images = make([]domain.Image, 0, len(in.Images))
	for _, img := range in.Images {
		p.Images = append(p.Images, domain.Image{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			URL:       img.URL,
			CreatedAt: ts,
		})
	}
}
