package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/storage/memory"
)

func TestTimelineRepository_ChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTimelineRepository()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	events := []domain.TimelineEvent{
		{OrderID: "o1", Type: domain.TimelineOrderPaid, Occurred: base.Add(time.Minute)},
		{OrderID: "o1", Type: domain.TimelineOrderCreated, Occurred: base},
		{OrderID: "o1", Type: domain.TimelineOrderUpdated, Occurred: base.Add(time.Minute)},
		{OrderID: "o2", Type: domain.TimelineOrderCreated, Occurred: base},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	got, err := repo.List(ctx, "o1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{domain.TimelineOrderCreated, domain.TimelineOrderPaid, domain.TimelineOrderUpdated}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i, typ := range want {
		if got[i].Type != typ {
			t.Fatalf("event %d: expected %s, got %s", i, typ, got[i].Type)
		}
	}

	empty, _ := repo.List(ctx, "unknown")
	if len(empty) != 0 {
		t.Fatalf("expected empty timeline, got %d", len(empty))
	}
}

func TestTimelineRepository_RejectsIncompleteEvent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTimelineRepository()

	for _, e := range []domain.TimelineEvent{
		{Type: domain.TimelineOrderCreated},
		{OrderID: "o1", Type: " "},
	} {
		if err := repo.Append(ctx, e); !errors.Is(err, domain.ErrTimelineEventInvalid) {
			t.Fatalf("expected ErrTimelineEventInvalid for %+v, got %v", e, err)
		}
	}
	got, err := repo.List(ctx, "o1")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty timeline, got %+v err=%v", got, err)
	}
}
