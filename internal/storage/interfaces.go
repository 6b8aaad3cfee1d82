package storage

import (
	"context"
	"time"

	"runesswap/internal/domain"
)

// SessionTokenStore persists one lending-venue session token per wallet
// address. Upsert semantics: the latest write for an address wins, which
// matches the single-session-per-address product rule. There is deliberately
// no optimistic locking.
type SessionTokenStore interface {
	// Get retrieves the token row for an address. Returns ErrNotFound if the
	// address has never authenticated (or the row was deleted).
	Get(ctx context.Context, walletAddress string) (*domain.SessionToken, error)

	// Upsert creates or replaces the token row for t.WalletAddress.
	Upsert(ctx context.Context, t *domain.SessionToken) error

	// TouchLastUsed records a successful read of the token.
	TouchLastUsed(ctx context.Context, walletAddress string, at time.Time) error

	// Delete removes the token row for an address. Deleting a missing row is
	// not an error.
	Delete(ctx context.Context, walletAddress string) error
}

// MarketSnapshotStore caches the latest market data per rune.
type MarketSnapshotStore interface {
	// Get retrieves the snapshot for a rune. Returns ErrNotFound if absent.
	Get(ctx context.Context, runeName string) (*domain.MarketSnapshot, error)

	// Upsert creates or replaces the snapshot for m.RuneName.
	Upsert(ctx context.Context, m *domain.MarketSnapshot) error
}
