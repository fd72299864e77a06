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

func newOrder(id string, createdAt time.Time, productIDs ...string) domain.Order {
	items := make([]domain.OrderItem, 0, len(productIDs))
	for i, pid := range productIDs {
		items = append(items, domain.OrderItem{
			ID:        id + "-item-" + string(rune('a'+i)),
			OrderID:   id,
			ProductID: pid,
			CreatedAt: createdAt,
		})
	}
	return domain.Order{
		ID:        id,
		StoreID:   "store-1",
		Items:     items,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func seedProduct(t *testing.T, repo domain.ProductRepository, id, price string) {
	t.Helper()
	err := repo.Create(context.Background(), domain.Product{
		ID:        id,
		StoreID:   "store-1",
		Name:      id,
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed product failed: %v", err)
	}
}

func TestOrderRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository(memory.NewProductRepository())
	order := newOrder("order-1", time.Now().UTC(), "p1", "p1")

	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, order); !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored.Items))
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository(memory.NewProductRepository())
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new"} {
		if err := repo.Create(ctx, newOrder(id, base.Add(time.Duration(i)*time.Hour), "p1")); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	other := newOrder("foreign", base, "p1")
	other.StoreID = "store-2"
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	orders, err := repo.ListByStore(ctx, "store-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "new" {
		t.Fatalf("unexpected list result: %+v", orders)
	}
}

func TestOrderRepository_MarkPaidIsRepeatable(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository(memory.NewProductRepository())
	if err := repo.Create(ctx, newOrder("order-1", time.Now().UTC(), "p1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		paid, err := repo.MarkPaid(ctx, "order-1", "+6599999999", "1 Main St, SG")
		if err != nil {
			t.Fatalf("mark paid failed: %v", err)
		}
		if !paid.IsPaid || paid.Phone != "+6599999999" || paid.Address != "1 Main St, SG" {
			t.Fatalf("unexpected order after MarkPaid: %+v", paid)
		}
	}

	if _, err := repo.MarkPaid(ctx, "missing", "", ""); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository(memory.NewProductRepository())
	order := newOrder("order-1", time.Now().UTC(), "p1")
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	order.Phone = "123"
	order.Address = "Somewhere"
	order.IsPaid = true
	order.Items = nil
	if err := repo.Update(ctx, order); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored, _ := repo.Get(ctx, order.ID)
	if stored.Phone != "123" || !stored.IsPaid || len(stored.Items) != 1 {
		t.Fatalf("unexpected order after update: %+v", stored)
	}

	order.StoreID = "store-2"
	if err := repo.Update(ctx, order); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign store, got %v", err)
	}

	if n, _ := repo.Delete(ctx, "store-2", "order-1"); n != 0 {
		t.Fatalf("expected foreign delete to affect 0, got %d", n)
	}
	if n, _ := repo.Delete(ctx, "store-1", "order-1"); n != 1 {
		t.Fatalf("expected delete to affect 1, got %d", n)
	}
}

func TestOrderRepository_PaidLinesUseCurrentPrice(t *testing.T) {
	ctx := context.Background()
	products := memory.NewProductRepository()
	seedProduct(t, products, "p1", "10.50")
	seedProduct(t, products, "p2", "3")
	repo := memory.NewOrderRepository(products)

	if err := repo.Create(ctx, newOrder("paid", time.Now().UTC(), "p1", "p1", "p2", "gone")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.Create(ctx, newOrder("unpaid", time.Now().UTC(), "p1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.MarkPaid(ctx, "paid", "", ""); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	lines, err := repo.ListPaidLines(ctx, "store-1")
	if err != nil {
		t.Fatalf("list paid lines failed: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 priced lines, got %d", len(lines))
	}
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price)
	}
	if !total.Equal(decimal.RequireFromString("24")) {
		t.Fatalf("expected total 24, got %s", total)
	}

	count, err := repo.CountPaidItems(ctx, "store-1")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 paid items, got %d", count)
	}
}
