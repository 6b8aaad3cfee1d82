package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

func TestMarketSnapshotStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketSnapshotStore(pool)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	m := &domain.MarketSnapshot{
		RuneName:     "UNCOMMON GOODS",
		PriceSats:    decimal.NewFromFloat(0.25),
		PriceUSD:     decimal.NewFromFloat(0.00017),
		MarketCapUSD: decimal.NewFromInt(1_250_000),
		FetchedAt:    now,
		CreatedAt:    now,
	}
	require.NoError(t, store.Upsert(ctx, m))

	got, err := store.Get(ctx, "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.True(t, got.PriceSats.Equal(m.PriceSats), "price_sats mismatch: %s", got.PriceSats)
	assert.True(t, got.PriceUSD.Equal(m.PriceUSD))
	assert.Equal(t, now, got.FetchedAt)
}

func TestMarketSnapshotStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketSnapshotStore(pool)
	ctx := context.Background()

	first := &domain.MarketSnapshot{
		RuneName:     "DOG GO TO THE MOON",
		PriceSats:    decimal.NewFromFloat(1.1),
		PriceUSD:     decimal.NewFromFloat(0.001),
		MarketCapUSD: decimal.NewFromInt(100),
		FetchedAt:    1000,
		CreatedAt:    1000,
	}
	require.NoError(t, store.Upsert(ctx, first))

	second := *first
	second.PriceSats = decimal.NewFromFloat(2.2)
	second.FetchedAt = 2000
	require.NoError(t, store.Upsert(ctx, &second))

	got, err := store.Get(ctx, "DOG GO TO THE MOON")
	require.NoError(t, err)
	assert.True(t, got.PriceSats.Equal(decimal.NewFromFloat(2.2)))
	assert.Equal(t, int64(2000), got.FetchedAt)
}

func TestMarketSnapshotStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMarketSnapshotStore(pool)

	_, err := store.Get(context.Background(), "NO SUCH RUNE")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
