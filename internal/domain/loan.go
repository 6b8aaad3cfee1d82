package domain

import "github.com/shopspring/decimal"

// LoanOffer is the lending venue's proposed loan terms for a rune collateral
// amount. Unlike swap quotes it carries a venue-declared expiry and must be
// re-validated against it before every prepare call.
type LoanOffer struct {
	OfferID          string
	RuneName         string
	CollateralAmount decimal.Decimal // rune units pledged
	PrincipalSats    uint64          // BTC loan principal in sats
	InterestRatePct  decimal.Decimal
	TermDays         int
	ExpiresAtMs      int64 // venue-declared, Unix milliseconds
}

// BorrowPrepare carries the fields the lending venue requires to construct an
// unsigned loan-start PSBT.
type BorrowPrepare struct {
	OfferID        string
	TokenAmount    string // raw rune amount as a decimal string, venue convention
	FeeRate        uint64 // sats/vByte
	OrdinalAddress string
	OrdinalPubKey  string
	PaymentAddress string
	PaymentPubKey  string
	WalletKind     string // wallet identifier bound into the venue's signature scheme
}

// BorrowSubmit returns the signed loan-start PSBT for execution.
type BorrowSubmit struct {
	SignedPSBTBase64 string
	PrepareOfferID   string // identifier from the matching BorrowPrepare response
}

// RepayPrepare requests an unsigned repayment PSBT for an active loan.
type RepayPrepare struct {
	LoanID         string
	FeeRate        uint64
	PaymentAddress string
	PaymentPubKey  string
}

// RepaySubmit returns the signed repayment PSBT for execution.
type RepaySubmit struct {
	SignedPSBTBase64 string
	PrepareOfferID   string
}
