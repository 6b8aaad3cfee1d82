package domain

import "time"

// SessionToken is the bearer credential for one wallet address at the lending
// venue. At most one live token exists per address; re-authentication upserts
// and the latest write wins.
// Corresponds to the session_tokens table in PostgreSQL.
type SessionToken struct {
	WalletAddress string     // PRIMARY KEY
	Token         string     // venue-issued JWT
	ExpiresAt     *time.Time // nil means the venue declared no expiry
	LastUsedAt    *time.Time // touched on every successful read
	CreatedAt     time.Time
}

// Expired reports whether the token is past its expiry at the given instant.
// Tokens without an expiry never expire here; the venue still rejects them
// server-side if it revokes the session.
func (t *SessionToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
