package plan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	store "coachdesk/internal/adapters/storage/plan"
	"coachdesk/internal/adapters/storage/storagetest"
	domain "coachdesk/internal/domain/plan"
)

func TestPlanLifecycle(t *testing.T) {
	db := storagetest.Open(t)
	storagetest.InsertCustomer(t, db, "c1", "active")
	s := store.NewSQLiteStore(db)
	ctx := context.Background()
	gen := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	plans := []domain.Plan{
		{ID: "p1", CustomerID: "c1", Kind: domain.KindMeal, CheckpointNumber: 1, Status: domain.StatusPending, GeneratedAt: gen},
		{ID: "p2", CustomerID: "c1", Kind: domain.KindWorkout, CheckpointNumber: 1, Status: domain.StatusPending, GeneratedAt: gen.Add(time.Hour)},
		{ID: "p3", CustomerID: "c1", Kind: domain.KindMeal, CheckpointNumber: 2, Status: domain.StatusPending, GeneratedAt: gen.Add(2 * time.Hour)},
	}
	for _, p := range plans {
		if err := s.Save(ctx, p); err != nil {
			t.Fatalf("Save %s: %v", p.ID, err)
		}
	}

	p, err := s.GetByID(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	reviewed := gen.Add(24 * time.Hour)
	if err := p.Approve("adv-1", "Looks balanced", reviewed); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByID(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.StatusApproved || got.ReviewedBy != "adv-1" || got.ReviewComment != "Looks balanced" || !got.ReviewedAt.Equal(reviewed) {
		t.Errorf("approved plan = %+v", got)
	}

	pending, err := s.List(ctx, store.ListFilter{Status: domain.StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 || pending[0].ID != "p3" {
		t.Errorf("pending = %+v, want p3 first", pending)
	}

	byKind, err := s.CountPendingByKind(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if byKind[domain.KindMeal] != 1 || byKind[domain.KindWorkout] != 1 {
		t.Errorf("CountPendingByKind = %v", byKind)
	}

	n, err := s.CountApprovedSince(ctx, reviewed.Add(-time.Minute))
	if err != nil || n != 1 {
		t.Errorf("CountApprovedSince = %d, %v; want 1", n, err)
	}
	n, _ = s.CountApprovedSince(ctx, reviewed.Add(time.Minute))
	if n != 0 {
		t.Errorf("CountApprovedSince(after) = %d, want 0", n)
	}

	if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
