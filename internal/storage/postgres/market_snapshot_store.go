package postgres

import (
	"context"
	"fmt"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// MarketSnapshotStore implements storage.MarketSnapshotStore using PostgreSQL.
type MarketSnapshotStore struct {
	pool *Pool
}

// NewMarketSnapshotStore creates a new MarketSnapshotStore.
func NewMarketSnapshotStore(pool *Pool) *MarketSnapshotStore {
	return &MarketSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)

// Get retrieves the snapshot for a rune. Returns ErrNotFound if absent.
func (s *MarketSnapshotStore) Get(ctx context.Context, runeName string) (*domain.MarketSnapshot, error) {
	if runeName == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT rune_name, price_sats, price_usd, market_cap_usd, fetched_at, created_at
		FROM market_snapshots
		WHERE rune_name = $1
	`

	var m domain.MarketSnapshot
	err := s.pool.QueryRow(ctx, query, runeName).Scan(
		&m.RuneName,
		&m.PriceSats,
		&m.PriceUSD,
		&m.MarketCapUSD,
		&m.FetchedAt,
		&m.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get market snapshot: %w", err)
	}
	return &m, nil
}

// Upsert creates or replaces the snapshot for m.RuneName.
func (s *MarketSnapshotStore) Upsert(ctx context.Context, m *domain.MarketSnapshot) error {
	if m == nil || m.RuneName == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO market_snapshots (rune_name, price_sats, price_usd, market_cap_usd, fetched_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (rune_name) DO UPDATE SET
			price_sats = EXCLUDED.price_sats,
			price_usd = EXCLUDED.price_usd,
			market_cap_usd = EXCLUDED.market_cap_usd,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := s.pool.Exec(ctx, query,
		m.RuneName,
		m.PriceSats,
		m.PriceUSD,
		m.MarketCapUSD,
		m.FetchedAt,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert market snapshot: %w", err)
	}
	return nil
}
