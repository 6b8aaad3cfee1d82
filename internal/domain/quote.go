package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteTTLMs is how long a fetched swap quote may be used to build a PSBT.
// Expired quotes are discarded and refetched, never reused.
const QuoteTTLMs = 60_000

// Swap side constants.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// OrderRef references a single venue order selected for a quote.
type OrderRef struct {
	ID     string          `json:"id"`
	Market string          `json:"market"`
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"formattedAmount"`
}

// Quote is a venue-priced proposal to exchange one asset for another.
// Valid only while now - FetchedAt < QuoteTTLMs.
type Quote struct {
	InputAsset     string          // "BTC" or a rune name
	OutputAsset    string          // "BTC" or a rune name
	Amount         decimal.Decimal // input amount as quoted
	ExpectedOutput decimal.Decimal // venue-estimated output amount
	Side           string          // SideBuy | SideSell (from the rune's perspective)
	SelectedOrders []OrderRef      // venue order references backing the price
	FetchedAt      int64           // Unix timestamp in milliseconds
}

// IsValid reports whether the quote is still inside its validity window.
func (q *Quote) IsValid(now time.Time) bool {
	return now.UnixMilli()-q.FetchedAt < QuoteTTLMs
}

// AgeMs returns the quote age in milliseconds at the given instant.
func (q *Quote) AgeMs(now time.Time) int64 {
	return now.UnixMilli() - q.FetchedAt
}
