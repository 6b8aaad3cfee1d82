// Package venue defines the failure taxonomy shared by both upstream venues
// and the HTTP transport used to talk to them. Upstream failures are
// classified by status code and message into a small set of kinds the rest of
// the service switches on; anything unclassified degrades to Unavailable or a
// generic internal error at the API boundary.
package venue

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a venue failure.
type Kind string

const (
	KindValidation   Kind = "validation"    // malformed input, never retried
	KindAuthRequired Kind = "auth_required" // caller must authenticate
	KindAuthExpired  Kind = "auth_expired"  // caller must re-authenticate
	KindQuoteExpired Kind = "quote_expired" // caller must refetch a quote
	KindNoLiquidity  Kind = "no_liquidity"  // no orders available for the pair
	KindRateLimited  Kind = "rate_limited"  // caller must back off
	KindUnavailable  Kind = "unavailable"   // transient upstream failure
	KindFeeTooLow    Kind = "fee_too_low"   // eligible for the one-shot fee bump
)

// Error is a typed venue failure.
type Error struct {
	Kind              Kind
	Message           string
	RetryAfterSeconds int // only set for KindRateLimited
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a typed venue failure.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// IsKind reports whether err carries the given venue failure kind.
func IsKind(err error, kind Kind) bool {
	var ve *Error
	return errors.As(err, &ve) && ve.Kind == kind
}

// feeTooLowMarkers are the message fragments venues use when a constructed
// transaction pays below the current floor.
var feeTooLowMarkers = []string{
	"fee rate too low",
	"feerate too low",
	"min relay fee",
}

// quoteExpiredMarkers are the message fragments venues use for stale quotes
// and orders.
var quoteExpiredMarkers = []string{
	"quote expired",
	"order expired",
	"quote has expired",
}

// IsFeeTooLowMessage reports whether a venue message indicates the fee rate
// was below the venue's floor.
func IsFeeTooLowMessage(msg string) bool {
	return containsAny(msg, feeTooLowMarkers)
}

// IsQuoteExpiredMessage reports whether a venue message indicates stale
// pricing.
func IsQuoteExpiredMessage(msg string) bool {
	return containsAny(msg, quoteExpiredMarkers)
}

func containsAny(msg string, markers []string) bool {
	lower := strings.ToLower(msg)
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// Classify maps an upstream HTTP status and message to a typed failure.
// Message-level markers win over the status code because some venues return
// business failures with a 200-family or generic 400 status.
func Classify(status int, message string) *Error {
	switch {
	case IsFeeTooLowMessage(message):
		return &Error{Kind: KindFeeTooLow, Message: message}
	case IsQuoteExpiredMessage(message):
		return &Error{Kind: KindQuoteExpired, Message: message}
	}

	switch status {
	case 400, 422:
		return &Error{Kind: KindValidation, Message: message}
	case 401, 403:
		if strings.Contains(strings.ToLower(message), "expired") {
			return &Error{Kind: KindAuthExpired, Message: message}
		}
		return &Error{Kind: KindAuthRequired, Message: message}
	case 404:
		return &Error{Kind: KindNoLiquidity, Message: message}
	case 410:
		return &Error{Kind: KindQuoteExpired, Message: message}
	case 429:
		return &Error{Kind: KindRateLimited, Message: message, RetryAfterSeconds: 1}
	default:
		return &Error{Kind: KindUnavailable, Message: message}
	}
}
