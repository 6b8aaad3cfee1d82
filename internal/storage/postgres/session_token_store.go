package postgres

import (
	"context"
	"fmt"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// SessionTokenStore implements storage.SessionTokenStore using PostgreSQL.
type SessionTokenStore struct {
	pool *Pool
}

// NewSessionTokenStore creates a new SessionTokenStore.
func NewSessionTokenStore(pool *Pool) *SessionTokenStore {
	return &SessionTokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SessionTokenStore = (*SessionTokenStore)(nil)

// Get retrieves the token row for an address. Returns ErrNotFound if absent.
func (s *SessionTokenStore) Get(ctx context.Context, walletAddress string) (*domain.SessionToken, error) {
	if walletAddress == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT wallet_address, token, expires_at, last_used_at, created_at
		FROM session_tokens
		WHERE wallet_address = $1
	`

	var t domain.SessionToken
	err := s.pool.QueryRow(ctx, query, walletAddress).Scan(
		&t.WalletAddress,
		&t.Token,
		&t.ExpiresAt,
		&t.LastUsedAt,
		&t.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get session token: %w", err)
	}
	return &t, nil
}

// Upsert creates or replaces the token row for t.WalletAddress. The latest
// write wins per the single-session-per-address rule.
func (s *SessionTokenStore) Upsert(ctx context.Context, t *domain.SessionToken) error {
	if t == nil || t.WalletAddress == "" || t.Token == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO session_tokens (wallet_address, token, expires_at, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (wallet_address) DO UPDATE SET
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			last_used_at = EXCLUDED.last_used_at
	`

	_, err := s.pool.Exec(ctx, query, t.WalletAddress, t.Token, t.ExpiresAt, t.LastUsedAt)
	if err != nil {
		return fmt.Errorf("upsert session token: %w", err)
	}
	return nil
}

// TouchLastUsed records a successful read of the token.
func (s *SessionTokenStore) TouchLastUsed(ctx context.Context, walletAddress string, at time.Time) error {
	if walletAddress == "" {
		return storage.ErrInvalidInput
	}

	query := `UPDATE session_tokens SET last_used_at = $2 WHERE wallet_address = $1`

	_, err := s.pool.Exec(ctx, query, walletAddress, at)
	if err != nil {
		return fmt.Errorf("touch session token: %w", err)
	}
	return nil
}

// Delete removes the token row for an address.
func (s *SessionTokenStore) Delete(ctx context.Context, walletAddress string) error {
	if walletAddress == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `DELETE FROM session_tokens WHERE wallet_address = $1`, walletAddress)
	if err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
