package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
)

func TestProductRepository_ListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	base := time.Now().UTC()

	products := []domain.Product{
		{ID: "p1", StoreID: "s1", CategoryID: "c1", ColorID: "red", IsFeatured: true, CreatedAt: base},
		{ID: "p2", StoreID: "s1", CategoryID: "c1", ColorID: "blue", CreatedAt: base.Add(time.Second)},
		{ID: "p3", StoreID: "s1", CategoryID: "c2", IsArchived: true, CreatedAt: base.Add(2 * time.Second)},
		{ID: "p4", StoreID: "s2", CategoryID: "c1", CreatedAt: base},
	}
	for _, p := range products {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, "s1", domain.ProductFilter{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != "p2" {
		t.Fatalf("expected non-archived newest first, got %+v", all)
	}

	featured, _ := repo.List(ctx, "s1", domain.ProductFilter{FeaturedOnly: true})
	if len(featured) != 1 || featured[0].ID != "p1" {
		t.Fatalf("unexpected featured list: %+v", featured)
	}

	blue, _ := repo.List(ctx, "s1", domain.ProductFilter{CategoryID: "c1", ColorID: "blue"})
	if len(blue) != 1 || blue[0].ID != "p2" {
		t.Fatalf("unexpected filtered list: %+v", blue)
	}

	archived, err := repo.Get(ctx, "s1", "p3")
	if err != nil || !archived.IsArchived {
		t.Fatalf("expected direct get to return archived product, got %+v, %v", archived, err)
	}
}

func TestProductRepository_FindByIDsIsStoreScoped(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	for _, p := range []domain.Product{
		{ID: "p1", StoreID: "s1"},
		{ID: "p2", StoreID: "s1", IsArchived: true},
		{ID: "p3", StoreID: "s2"},
	} {
		if err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	found, err := repo.FindByIDs(ctx, "s1", []string{"p1", "p1", "p2", "p3", "missing"})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 distinct products, got %d", len(found))
	}
}

func TestProductRepository_UpdateReplacesImages(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	product := domain.Product{
		ID:        "p1",
		StoreID:   "s1",
		Price:     decimal.NewFromInt(10),
		Images:    []domain.Image{{ID: "i1", URL: "a.png"}, {ID: "i2", URL: "b.png"}},
		CreatedAt: created,
	}
	if err := repo.Create(ctx, product); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	product.Images = []domain.Image{{ID: "i3", URL: "c.png"}}
	product.CreatedAt = time.Now()
	if err := repo.Update(ctx, product); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored, _ := repo.Get(ctx, "s1", "p1")
	if len(stored.Images) != 1 || stored.Images[0].URL != "c.png" {
		t.Fatalf("expected images to be replaced, got %+v", stored.Images)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Fatalf("expected createdAt to be preserved, got %s", stored.CreatedAt)
	}

	product.StoreID = "s2"
	if err := repo.Update(ctx, product); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_ArchiveAndCount(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()
	for _, id := range []string{"p1", "p2", "p3"} {
		if err := repo.Create(ctx, domain.Product{ID: id, StoreID: "s1"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	n, err := repo.ArchiveByIDs(ctx, []string{"p1", "p1", "p2", "missing"})
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 archived, got %d", n)
	}
	if n, _ := repo.ArchiveByIDs(ctx, []string{"p1"}); n != 1 {
		t.Fatalf("expected repeated archive to match 1, got %d", n)
	}

	available, err := repo.CountAvailable(ctx, "s1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if available != 1 {
		t.Fatalf("expected 1 available, got %d", available)
	}
}
