package memory

import (
	"context"
	"sync"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// SessionTokenStore is an in-memory implementation of storage.SessionTokenStore.
type SessionTokenStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SessionToken // keyed by wallet_address
}

// NewSessionTokenStore creates a new in-memory session token store.
func NewSessionTokenStore() *SessionTokenStore {
	return &SessionTokenStore{
		data: make(map[string]*domain.SessionToken),
	}
}

// Compile-time interface check.
var _ storage.SessionTokenStore = (*SessionTokenStore)(nil)

// Get retrieves the token row for an address. Returns ErrNotFound if absent.
func (s *SessionTokenStore) Get(_ context.Context, walletAddress string) (*domain.SessionToken, error) {
	if walletAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.data[walletAddress]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy to prevent external mutation
	tokenCopy := *t
	return &tokenCopy, nil
}

// Upsert creates or replaces the token row for t.WalletAddress.
func (s *SessionTokenStore) Upsert(_ context.Context, t *domain.SessionToken) error {
	if t == nil || t.WalletAddress == "" || t.Token == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tokenCopy := *t
	if tokenCopy.CreatedAt.IsZero() {
		tokenCopy.CreatedAt = time.Now()
	}
	s.data[t.WalletAddress] = &tokenCopy
	return nil
}

// TouchLastUsed records a successful read of the token.
func (s *SessionTokenStore) TouchLastUsed(_ context.Context, walletAddress string, at time.Time) error {
	if walletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, exists := s.data[walletAddress]; exists {
		touched := at
		t.LastUsedAt = &touched
	}
	return nil
}

// Delete removes the token row for an address.
func (s *SessionTokenStore) Delete(_ context.Context, walletAddress string) error {
	if walletAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, walletAddress)
	return nil
}
