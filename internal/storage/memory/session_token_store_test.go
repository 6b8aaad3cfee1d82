package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

func TestSessionTokenStore_UpsertAndGet(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	expires := time.Now().Add(time.Hour)
	err := store.Upsert(ctx, &domain.SessionToken{
		WalletAddress: "bc1qaddr",
		Token:         "jwt-1",
		ExpiresAt:     &expires,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "bc1qaddr")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Token != "jwt-1" {
		t.Errorf("Token mismatch: got %s, want jwt-1", got.Token)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set on upsert")
	}
}

func TestSessionTokenStore_LatestWriteWins(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr", Token: "old"}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr", Token: "new"}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := store.Get(ctx, "addr")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Token != "new" {
		t.Errorf("expected latest write to win, got %s", got.Token)
	}
}

func TestSessionTokenStore_NotFound(t *testing.T) {
	store := NewSessionTokenStore()

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSessionTokenStore_InvalidInput(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr"}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty token, got %v", err)
	}
	if _, err := store.Get(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty address, got %v", err)
	}
}

func TestSessionTokenStore_TouchLastUsed(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr", Token: "tok"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	at := time.Now()
	if err := store.TouchLastUsed(ctx, "addr", at); err != nil {
		t.Fatalf("TouchLastUsed failed: %v", err)
	}

	got, err := store.Get(ctx, "addr")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.LastUsedAt == nil || !got.LastUsedAt.Equal(at) {
		t.Errorf("LastUsedAt not recorded: %v", got.LastUsedAt)
	}
}

func TestSessionTokenStore_Delete(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr", Token: "tok"}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Delete(ctx, "addr"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "addr"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is not an error.
	if err := store.Delete(ctx, "addr"); err != nil {
		t.Errorf("Delete of missing row failed: %v", err)
	}
}

func TestSessionTokenStore_ConcurrentUpserts(t *testing.T) {
	store := NewSessionTokenStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Upsert(ctx, &domain.SessionToken{WalletAddress: "addr", Token: "tok"})
			_, _ = store.Get(ctx, "addr")
			_ = store.TouchLastUsed(ctx, "addr", time.Now())
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "addr")
	if err != nil {
		t.Fatalf("Get after concurrent upserts failed: %v", err)
	}
	if got.Token != "tok" {
		t.Errorf("unexpected token: %s", got.Token)
	}
}
