// Package marketdata serves rune market snapshots through a store-backed
// freshness window, refreshing from the liquidity venue on miss or staleness.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// Fetcher is the slice of the liquidity-venue client this service needs.
type Fetcher interface {
	FetchMarket(ctx context.Context, runeName string) (*domain.MarketSnapshot, error)
}

// Service reads market snapshots, consulting the venue only when the stored
// snapshot is missing or stale.
type Service struct {
	store   storage.MarketSnapshotStore
	fetcher Fetcher
	log     zerolog.Logger
	now     func() time.Time
}

// Options for creating a Service.
type Options struct {
	Store   storage.MarketSnapshotStore
	Fetcher Fetcher
	Logger  zerolog.Logger
	Now     func() time.Time // defaults to time.Now
}

// New creates a market data Service.
func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   opts.Store,
		fetcher: opts.Fetcher,
		log:     opts.Logger,
		now:     now,
	}
}

// Get returns the market snapshot for a rune. A stored snapshot inside its
// freshness window is served without a venue call; otherwise the venue is
// consulted and the result persisted. When the venue is down a stale stored
// snapshot is served rather than failing the read.
func (s *Service) Get(ctx context.Context, runeName string) (*domain.MarketSnapshot, error) {
	nowMs := s.now().UnixMilli()

	stored, err := s.store.Get(ctx, runeName)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("read market snapshot: %w", err)
	}
	if stored != nil && stored.Fresh(nowMs) {
		return stored, nil
	}

	fetched, err := s.fetcher.FetchMarket(ctx, runeName)
	if err != nil {
		if stored != nil {
			s.log.Warn().Err(err).Str("rune", runeName).Msg("venue fetch failed, serving stale snapshot")
			return stored, nil
		}
		return nil, fmt.Errorf("fetch market snapshot: %w", err)
	}

	if err := s.store.Upsert(ctx, fetched); err != nil {
		// The caller still gets the fresh data; persistence is a cache.
		s.log.Warn().Err(err).Str("rune", runeName).Msg("failed to persist market snapshot")
	}
	return fetched, nil
}
