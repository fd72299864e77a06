package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// BillboardInput описывает тело создания и изменения билборда.
type BillboardInput struct {
	Label    string `json:"label" validate:"required" label:"Label"`
	ImageURL string `json:"imageUrl" validate:"required" label:"Image URL"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required" label:"Name"`
	BillboardID string `json:"billboardId" validate:"required" label:"Billboard ID"`
}

type SizeInput struct {
	Name  string `json:"name" validate:"required" label:"Name"`
	Value string `json:"value" validate:"required" label:"Value"`
}

// ColorInput.Value содержит hex-код вида #rgb или #rrggbb.
type ColorInput struct {
	Name  string `json:"name" validate:"required" label:"Name"`
	Value string `json:"value" validate:"required,hexcolor" label:"Value"`
}

// Billboards

func (s *Service) CreateBillboard(ctx context.Context, userID, storeID string, in BillboardInput) (domain.Billboard, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Billboard{}, err
	}
	ts := s.now()
	b := domain.Billboard{ID: uuid.NewString(), StoreID: storeID, Label: in.Label, ImageURL: in.ImageURL, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Billboards.Create(ctx, b); err != nil {
		return domain.Billboard{}, repoErr(err)
	}
	return b, nil
}

func (s *Service) GetBillboard(ctx context.Context, storeID, id string) (domain.Billboard, error) {
	return getScoped(ctx, s.repos.Billboards, storeID, id, "Billboard id")
}

func (s *Service) ListBillboards(ctx context.Context, storeID string) ([]domain.Billboard, error) {
	return listScoped(ctx, s.repos.Billboards, storeID)
}

func (s *Service) UpdateBillboard(ctx context.Context, userID, storeID, id string, in BillboardInput) (domain.Billboard, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Billboard{}, err
	}
	b, err := getScoped(ctx, s.repos.Billboards, storeID, id, "Billboard id")
	if err != nil {
		return domain.Billboard{}, err
	}
	b.Label, b.ImageURL, b.UpdatedAt = in.Label, in.ImageURL, s.now()
	if err := s.repos.Billboards.Update(ctx, b); err != nil {
		return domain.Billboard{}, repoErr(err)
	}
	return b, nil
}

func (s *Service) DeleteBillboard(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Billboard id", s.repos.Billboards.Delete)
}

// Categories

func (s *Service) CreateCategory(ctx context.Context, userID, storeID string, in CategoryInput) (domain.Category, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Category{}, err
	}
	if err := ensureExists(ctx, s.repos.Billboards, storeID, in.BillboardID, "Billboard ID"); err != nil {
		return domain.Category{}, err
	}
	ts := s.now()
	c := domain.Category{ID: uuid.NewString(), StoreID: storeID, BillboardID: in.BillboardID, Name: in.Name, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		return domain.Category{}, repoErr(err)
	}
	return c, nil
}

func (s *Service) GetCategory(ctx context.Context, storeID, id string) (domain.Category, error) {
	return getScoped(ctx, s.repos.Categories, storeID, id, "Category id")
}

func (s *Service) ListCategories(ctx context.Context, storeID string) ([]domain.Category, error) {
	return listScoped(ctx, s.repos.Categories, storeID)
}

func (s *Service) UpdateCategory(ctx context.Context, userID, storeID, id string, in CategoryInput) (domain.Category, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Category{}, err
	}
	c, err := getScoped(ctx, s.repos.Categories, storeID, id, "Category id")
	if err != nil {
		return domain.Category{}, err
	}
	if err := ensureExists(ctx, s.repos.Billboards, storeID, in.BillboardID, "Billboard ID"); err != nil {
		return domain.Category{}, err
	}
	c.Name, c.BillboardID, c.UpdatedAt = in.Name, in.BillboardID, s.now()
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		return domain.Category{}, repoErr(err)
	}
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Category id", s.repos.Categories.Delete)
}

// Sizes

func (s *Service) CreateSize(ctx context.Context, userID, storeID string, in SizeInput) (domain.Size, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Size{}, err
	}
	ts := s.now()
	sz := domain.Size{ID: uuid.NewString(), StoreID: storeID, Name: in.Name, Value: in.Value, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Sizes.Create(ctx, sz); err != nil {
		return domain.Size{}, repoErr(err)
	}
	return sz, nil
}

func (s *Service) GetSize(ctx context.Context, storeID, id string) (domain.Size, error) {
	return getScoped(ctx, s.repos.Sizes, storeID, id, "Size id")
}

func (s *Service) ListSizes(ctx context.Context, storeID string) ([]domain.Size, error) {
	return listScoped(ctx, s.repos.Sizes, storeID)
}

func (s *Service) UpdateSize(ctx context.Context, userID, storeID, id string, in SizeInput) (domain.Size, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Size{}, err
	}
	sz, err := getScoped(ctx, s.repos.Sizes, storeID, id, "Size id")
	if err != nil {
		return domain.Size{}, err
	}
	sz.Name, sz.Value, sz.UpdatedAt = in.Name, in.Value, s.now()
	if err := s.repos.Sizes.Update(ctx, sz); err != nil {
		return domain.Size{}, repoErr(err)
	}
	return sz, nil
}

func (s *Service) DeleteSize(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Size id", s.repos.Sizes.Delete)
}

// Colors

func (s *Service) CreateColor(ctx context.Context, userID, storeID string, in ColorInput) (domain.Color, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Color{}, err
	}
	ts := s.now()
	c := domain.Color{ID: uuid.NewString(), StoreID: storeID, Name: in.Name, Value: in.Value, CreatedAt: ts, UpdatedAt: ts}
	if err := s.repos.Colors.Create(ctx, c); err != nil {
		return domain.Color{}, repoErr(err)
	}
	return c, nil
}

func (s *Service) GetColor(ctx context.Context, storeID, id string) (domain.Color, error) {
	return getScoped(ctx, s.repos.Colors, storeID, id, "Color id")
}

func (s *Service) ListColors(ctx context.Context, storeID string) ([]domain.Color, error) {
	return listScoped(ctx, s.repos.Colors, storeID)
}

func (s *Service) UpdateColor(ctx context.Context, userID, storeID, id string, in ColorInput) (domain.Color, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Color{}, err
	}
	c, err := getScoped(ctx, s.repos.Colors, storeID, id, "Color id")
	if err != nil {
		return domain.Color{}, err
	}
	c.Name, c.Value, c.UpdatedAt = in.Name, in.Value, s.now()
	if err := s.repos.Colors.Update(ctx, c); err != nil {
		return domain.Color{}, repoErr(err)
	}
	return c, nil
}

func (s *Service) DeleteColor(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Color id", s.repos.Colors.Delete)
}
