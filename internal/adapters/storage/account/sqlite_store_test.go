package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	store "coachdesk/internal/adapters/storage/account"
	"coachdesk/internal/adapters/storage/storagetest"
	domain "coachdesk/internal/domain/account"
)

func TestAccountStore(t *testing.T) {
	s := store.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := domain.Account{ID: "a1", Email: "Coach@Example.com", PasswordHash: "x", Role: domain.RoleAdvisor, CreatedAt: created}
	if err := s.Save(ctx, a); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetByEmail(ctx, "coach@example.com")
	if err != nil {
		t.Fatalf("GetByEmail ignores case: %v", err)
	}
	if got.ID != "a1" || !got.LockedUntil.IsZero() {
		t.Errorf("got %+v", got)
	}

	lock := created.Add(time.Hour)
	got.FailedLogins = 5
	got.LockedUntil = lock
	if err := s.Save(ctx, got); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetByID(ctx, "a1")
	if got.FailedLogins != 5 || !got.LockedUntil.Equal(lock) {
		t.Errorf("lockout not persisted: %+v", got)
	}

	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
