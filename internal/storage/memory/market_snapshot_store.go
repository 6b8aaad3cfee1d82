package memory

import (
	"context"
	"sync"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// MarketSnapshotStore is an in-memory implementation of storage.MarketSnapshotStore.
type MarketSnapshotStore struct {
	mu   sync.RWMutex
	data map[string]*domain.MarketSnapshot // keyed by rune_name
}

// NewMarketSnapshotStore creates a new in-memory market snapshot store.
func NewMarketSnapshotStore() *MarketSnapshotStore {
	return &MarketSnapshotStore{
		data: make(map[string]*domain.MarketSnapshot),
	}
}

// Compile-time interface check.
var _ storage.MarketSnapshotStore = (*MarketSnapshotStore)(nil)

// Get retrieves the snapshot for a rune. Returns ErrNotFound if absent.
func (s *MarketSnapshotStore) Get(_ context.Context, runeName string) (*domain.MarketSnapshot, error) {
	if runeName == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.data[runeName]
	if !exists {
		return nil, storage.ErrNotFound
	}

	snapshotCopy := *m
	return &snapshotCopy, nil
}

// Upsert creates or replaces the snapshot for m.RuneName.
func (s *MarketSnapshotStore) Upsert(_ context.Context, m *domain.MarketSnapshot) error {
	if m == nil || m.RuneName == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshotCopy := *m
	s.data[m.RuneName] = &snapshotCopy
	return nil
}
