package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hitoshi/authapp/internal/model"
)

func TestMemoryAccountRepo_InsertAndFind(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	now := time.Now()

	a := &model.Account{FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", CreatedAt: now, LastLogin: now}
	if err := repo.Insert(ctx, a); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if a.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.FindByEmail(ctx, "john.doe@example.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got == nil || got.ID != a.ID {
		t.Fatalf("FindByEmail = %+v, want ID %q", got, a.ID)
	}

	// 返り値を変更しても保存内容は変わらない
	got.FirstName = "Mutated"
	again, _ := repo.FindByEmail(ctx, "john.doe@example.com")
	if again.FirstName != "John" {
		t.Errorf("stored account was mutated through returned copy")
	}
}

func TestMemoryAccountRepo_FindByEmail_NotFound(t *testing.T) {
	got, err := NewMemoryAccountRepo().FindByEmail(context.Background(), "ghost@example.com")
	if err != nil || got != nil {
		t.Fatalf("FindByEmail = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestMemoryAccountRepo_DuplicateEmail(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	if err := repo.Insert(ctx, &model.Account{Email: "a@example.com"}); err != nil {
		t.Fatalf("first Insert error: %v", err)
	}
	err := repo.Insert(ctx, &model.Account{Email: "a@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("second Insert = %v, want ErrDuplicateEmail", err)
	}
	if repo.Len() != 1 {
		t.Errorf("Len = %d, want 1", repo.Len())
	}
}

func TestMemoryAccountRepo_ConcurrentInsertSucceedsOnce(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, &model.Account{Email: "race@example.com"})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrDuplicateEmail):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || dup.Load() != 19 {
		t.Errorf("ok=%d dup=%d, want ok=1 dup=19", ok.Load(), dup.Load())
	}
}

func TestMemoryAccountRepo_UpdateLastLogin_IsMonotonic(t *testing.T) {
	repo := NewMemoryAccountRepo()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := &model.Account{Email: "a@example.com", CreatedAt: t0, LastLogin: t0}
	if err := repo.Insert(ctx, a); err != nil {
		t.Fatal(err)
	}

	if err := repo.UpdateLastLogin(ctx, a.ID, t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateLastLogin(ctx, a.ID, t0.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	got, _ := repo.FindByEmail(ctx, "a@example.com")
	if !got.LastLogin.Equal(t0.Add(time.Hour)) {
		t.Errorf("LastLogin = %v, want %v", got.LastLogin, t0.Add(time.Hour))
	}
}

func TestMemoryAccountRepo_UpdateLastLogin_NotFound(t *testing.T) {
	err := NewMemoryAccountRepo().UpdateLastLogin(context.Background(), "missing", time.Now())
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
}
