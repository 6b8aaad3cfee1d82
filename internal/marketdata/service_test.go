package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runesswap/internal/domain"
	"runesswap/internal/storage/memory"
	"runesswap/internal/venue"
)

type stubFetcher struct {
	calls    int
	snapshot *domain.MarketSnapshot
	err      error
}

func (f *stubFetcher) FetchMarket(context.Context, string) (*domain.MarketSnapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

func snapshotAt(fetchedAt time.Time, priceSats string) *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		RuneName:  "UNCOMMON GOODS",
		PriceSats: decimal.RequireFromString(priceSats),
		FetchedAt: fetchedAt.UnixMilli(),
	}
}

func newService(store *memory.MarketSnapshotStore, f Fetcher, now time.Time) *Service {
	return New(Options{
		Store:   store,
		Fetcher: f,
		Logger:  zerolog.Nop(),
		Now:     func() time.Time { return now },
	})
}

func TestGet_FreshSnapshotSkipsVenue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewMarketSnapshotStore()
	require.NoError(t, store.Upsert(context.Background(), snapshotAt(now.Add(-time.Minute), "5.5")))

	f := &stubFetcher{}
	got, err := newService(store, f, now).Get(context.Background(), "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.True(t, got.PriceSats.Equal(decimal.RequireFromString("5.5")))
	assert.Zero(t, f.calls)
}

func TestGet_StaleSnapshotRefreshesAndPersists(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewMarketSnapshotStore()
	require.NoError(t, store.Upsert(context.Background(), snapshotAt(now.Add(-6*time.Minute), "5.5")))

	f := &stubFetcher{snapshot: snapshotAt(now, "6.1")}
	got, err := newService(store, f, now).Get(context.Background(), "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.True(t, got.PriceSats.Equal(decimal.RequireFromString("6.1")))
	assert.Equal(t, 1, f.calls)

	persisted, err := store.Get(context.Background(), "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.True(t, persisted.PriceSats.Equal(decimal.RequireFromString("6.1")))
}

func TestGet_MissFetchesFromVenue(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{snapshot: snapshotAt(now, "6.1")}

	got, err := newService(memory.NewMarketSnapshotStore(), f, now).Get(context.Background(), "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "UNCOMMON GOODS", got.RuneName)
}

func TestGet_VenueDownServesStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewMarketSnapshotStore()
	require.NoError(t, store.Upsert(context.Background(), snapshotAt(now.Add(-10*time.Minute), "5.5")))

	f := &stubFetcher{err: venue.NewError(venue.KindUnavailable, "venue down")}
	got, err := newService(store, f, now).Get(context.Background(), "UNCOMMON GOODS")
	require.NoError(t, err)
	assert.True(t, got.PriceSats.Equal(decimal.RequireFromString("5.5")))
}

func TestGet_VenueDownWithNoSnapshotFails(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	f := &stubFetcher{err: venue.NewError(venue.KindUnavailable, "venue down")}

	_, err := newService(memory.NewMarketSnapshotStore(), f, now).Get(context.Background(), "UNCOMMON GOODS")
	require.Error(t, err)
	assert.True(t, venue.IsKind(err, venue.KindUnavailable))
}
