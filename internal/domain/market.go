package domain

import "github.com/shopspring/decimal"

// MarketSnapshotTTLMs is how long a cached market snapshot is served before a
// venue refresh is attempted.
const MarketSnapshotTTLMs = 300_000

// MarketSnapshot is the latest cached market data for one rune.
// Corresponds to the market_snapshots table in PostgreSQL.
type MarketSnapshot struct {
	RuneName     string // PRIMARY KEY, spaced-rune form ("UNCOMMON GOODS")
	PriceSats    decimal.Decimal
	PriceUSD     decimal.Decimal
	MarketCapUSD decimal.Decimal
	FetchedAt    int64 // Unix timestamp in milliseconds
	CreatedAt    int64
}

// Fresh reports whether the snapshot is inside its freshness window.
func (m *MarketSnapshot) Fresh(nowMs int64) bool {
	return nowMs-m.FetchedAt < MarketSnapshotTTLMs
}
