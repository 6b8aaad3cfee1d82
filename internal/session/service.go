// Package session manages the per-wallet-address lending-venue session token
// lifecycle: issue on successful challenge/response, read-with-expiry before
// every lending call, latest-write-wins on re-authentication.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"runesswap/internal/domain"
	"runesswap/internal/storage"
)

// Authentication outcomes distinguished from store failures.
var (
	// ErrAuthRequired means the address has no stored session token.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired means the stored token is past its expiry.
	ErrAuthExpired = errors.New("authentication expired")
)

// Service reads and issues session tokens for wallet addresses.
type Service struct {
	store storage.SessionTokenStore
	log   zerolog.Logger
	now   func() time.Time
}

// Options for creating a Service.
type Options struct {
	Store  storage.SessionTokenStore
	Logger zerolog.Logger
	Now    func() time.Time // defaults to time.Now
}

// New creates a session Service.
func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store: opts.Store,
		log:   opts.Logger,
		now:   now,
	}
}

// GetValidToken returns the live token for an address. Absence yields
// ErrAuthRequired, a past expiry yields ErrAuthExpired, and store failures
// propagate as-is — never masked as "no token".
func (s *Service) GetValidToken(ctx context.Context, walletAddress string) (string, error) {
	t, err := s.store.Get(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrAuthRequired
		}
		return "", fmt.Errorf("read session token: %w", err)
	}

	now := s.now()
	if t.Expired(now) {
		return "", ErrAuthExpired
	}

	if err := s.store.TouchLastUsed(ctx, walletAddress, now); err != nil {
		// The token is still usable; the touch is bookkeeping.
		s.log.Warn().Err(err).Str("wallet", walletAddress).Msg("failed to touch session token")
	}
	return t.Token, nil
}

// IssueToken upserts a venue-issued token for an address, superseding any
// prior session. When the venue declared no expiry the JWT's exp claim is
// used; a token with neither is stored as non-expiring.
func (s *Service) IssueToken(ctx context.Context, walletAddress, token string, expiresAt *time.Time) error {
	if expiresAt == nil {
		expiresAt = expiryFromJWT(token)
	}

	err := s.store.Upsert(ctx, &domain.SessionToken{
		WalletAddress: walletAddress,
		Token:         token,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return fmt.Errorf("store session token: %w", err)
	}

	s.log.Info().Str("wallet", walletAddress).Bool("expiring", expiresAt != nil).Msg("session token issued")
	return nil
}

// Revoke removes the stored token for an address.
func (s *Service) Revoke(ctx context.Context, walletAddress string) error {
	if err := s.store.Delete(ctx, walletAddress); err != nil {
		return fmt.Errorf("revoke session token: %w", err)
	}
	return nil
}

// expiryFromJWT extracts the exp claim without verifying the signature; the
// venue is the authority on the token, this is only a local freshness hint.
func expiryFromJWT(token string) *time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
