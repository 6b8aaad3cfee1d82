// Package liquidium is the lending-venue client: wallet-authentication
// challenges, session tokens, and loan-lifecycle PSBTs.
package liquidium

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/venue"
)

// Client talks to the lending venue's REST API.
type Client struct {
	transport *venue.Transport
}

// New creates a lending-venue client rooted at baseURL.
func New(baseURL string, opts ...venue.TransportOption) *Client {
	return &Client{transport: venue.NewTransport(baseURL, opts...)}
}

// bearer builds the per-request auth header for token-gated endpoints.
func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// Challenge is a signing challenge over the caller's ordinals and payment
// addresses. The wallet signs Message with both keys; the venue validates the
// signatures before issuing a session token.
type Challenge struct {
	Ordinals struct {
		Message string `json:"message"`
		Nonce   string `json:"nonce"`
	} `json:"ordinals"`
	Payment struct {
		Message string `json:"message"`
		Nonce   string `json:"nonce"`
	} `json:"payment"`
}

// GetChallenge fetches a signing challenge for the address pair.
func (c *Client) GetChallenge(ctx context.Context, ordinalsAddress, paymentAddress string) (*Challenge, error) {
	path := "/auth/challenge?ordinalsAddress=" + url.QueryEscape(ordinalsAddress) +
		"&paymentAddress=" + url.QueryEscape(paymentAddress)

	var ch Challenge
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &ch, nil); err != nil {
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return &ch, nil
}

// AuthRequest carries the signed challenge back to the venue.
type AuthRequest struct {
	OrdinalsAddress   string `json:"ordinalsAddress"`
	OrdinalsSignature string `json:"ordinalsSignature"`
	OrdinalsNonce     string `json:"ordinalsNonce"`
	PaymentAddress    string `json:"paymentAddress"`
	PaymentSignature  string `json:"paymentSignature,omitempty"`
	PaymentNonce      string `json:"paymentNonce,omitempty"`
	WalletKind        string `json:"wallet"`
}

// AuthResult is the venue-issued session credential.
type AuthResult struct {
	UserJWT   string     `json:"user_jwt"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SubmitChallenge exchanges a signed challenge for a session token. The venue
// validates the signatures; this client never verifies them locally.
func (c *Client) SubmitChallenge(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.transport.Do(ctx, http.MethodPost, "/auth/token", req, &res, nil); err != nil {
		return nil, fmt.Errorf("submit challenge: %w", err)
	}
	if res.UserJWT == "" {
		return nil, venue.NewError(venue.KindUnavailable, "venue issued an empty session token")
	}
	return &res, nil
}

type borrowPrepareRequest struct {
	OfferID         string `json:"offer_id"`
	TokenAmount     string `json:"token_amount"`
	FeeRate         uint64 `json:"fee_rate"`
	OrdinalsAddress string `json:"ordinals_address"`
	OrdinalsPubKey  string `json:"ordinals_public_key"`
	PaymentAddress  string `json:"payment_address"`
	PaymentPubKey   string `json:"payment_public_key"`
	WalletKind      string `json:"wallet"`
}

type prepareResponse struct {
	PSBTBase64     string `json:"base64_psbt"`
	PrepareOfferID string `json:"prepare_offer_id"`
}

// PrepareBorrow requests an unsigned loan-start PSBT for an offer.
func (c *Client) PrepareBorrow(ctx context.Context, token string, req domain.BorrowPrepare) (*domain.UnsignedProposal, error) {
	body := borrowPrepareRequest{
		OfferID:         req.OfferID,
		TokenAmount:     req.TokenAmount,
		FeeRate:         req.FeeRate,
		OrdinalsAddress: req.OrdinalAddress,
		OrdinalsPubKey:  req.OrdinalPubKey,
		PaymentAddress:  req.PaymentAddress,
		PaymentPubKey:   req.PaymentPubKey,
		WalletKind:      req.WalletKind,
	}

	var resp prepareResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/borrow/prepare", body, &resp, bearer(token)); err != nil {
		return nil, fmt.Errorf("prepare borrow: %w", err)
	}
	if resp.PSBTBase64 == "" || resp.PrepareOfferID == "" {
		return nil, venue.NewError(venue.KindUnavailable, "venue returned an incomplete proposal")
	}
	return &domain.UnsignedProposal{
		PSBTBase64:       resp.PSBTBase64,
		OfferID:          resp.PrepareOfferID,
		BuiltWithFeeRate: req.FeeRate,
	}, nil
}

type submitRequest struct {
	SignedPSBTBase64 string `json:"signed_psbt_base_64"`
	PrepareOfferID   string `json:"prepare_offer_id"`
}

type submitResponse struct {
	LoanTxID string `json:"loan_transaction_id"`
}

// SubmitBorrow submits a signed loan-start PSBT. PrepareOfferID is the
// venue's idempotency key from the matching PrepareBorrow response.
func (c *Client) SubmitBorrow(ctx context.Context, token string, req domain.BorrowSubmit) (string, error) {
	body := submitRequest{
		SignedPSBTBase64: req.SignedPSBTBase64,
		PrepareOfferID:   req.PrepareOfferID,
	}

	var resp submitResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/borrow/submit", body, &resp, bearer(token)); err != nil {
		return "", fmt.Errorf("submit borrow: %w", err)
	}
	if resp.LoanTxID == "" {
		return "", venue.NewError(venue.KindUnavailable, "venue accepted the loan without a txid")
	}
	return resp.LoanTxID, nil
}

type repayPrepareRequest struct {
	LoanID         string `json:"loan_id"`
	FeeRate        uint64 `json:"fee_rate"`
	PaymentAddress string `json:"payment_address"`
	PaymentPubKey  string `json:"payment_public_key"`
}

// PrepareRepay requests an unsigned repayment PSBT for an active loan.
func (c *Client) PrepareRepay(ctx context.Context, token string, req domain.RepayPrepare) (*domain.UnsignedProposal, error) {
	body := repayPrepareRequest{
		LoanID:         req.LoanID,
		FeeRate:        req.FeeRate,
		PaymentAddress: req.PaymentAddress,
		PaymentPubKey:  req.PaymentPubKey,
	}

	var resp prepareResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/repay/prepare", body, &resp, bearer(token)); err != nil {
		return nil, fmt.Errorf("prepare repay: %w", err)
	}
	if resp.PSBTBase64 == "" || resp.PrepareOfferID == "" {
		return nil, venue.NewError(venue.KindUnavailable, "venue returned an incomplete proposal")
	}
	return &domain.UnsignedProposal{
		PSBTBase64:       resp.PSBTBase64,
		OfferID:          resp.PrepareOfferID,
		BuiltWithFeeRate: req.FeeRate,
	}, nil
}

// SubmitRepay submits a signed repayment PSBT and returns the transaction id.
func (c *Client) SubmitRepay(ctx context.Context, token string, req domain.RepaySubmit) (string, error) {
	body := submitRequest{
		SignedPSBTBase64: req.SignedPSBTBase64,
		PrepareOfferID:   req.PrepareOfferID,
	}

	var resp submitResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/repay/submit", body, &resp, bearer(token)); err != nil {
		return "", fmt.Errorf("submit repay: %w", err)
	}
	if resp.LoanTxID == "" {
		return "", venue.NewError(venue.KindUnavailable, "venue accepted the repayment without a txid")
	}
	return resp.LoanTxID, nil
}
