package satsterminal

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// parseDecimal parses a venue-formatted amount, tolerating empty strings.
// Venues format amounts as decimal strings; an unparsable value becomes zero
// rather than failing the whole exchange.
func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}
