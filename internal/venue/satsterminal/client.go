// Package satsterminal is the liquidity-venue client: swap quotes, PSBT
// construction, and signed-PSBT confirmation.
package satsterminal

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/venue"
)

// Client talks to the liquidity venue's REST API.
type Client struct {
	transport *venue.Transport
	now       func() time.Time
}

// New creates a liquidity-venue client rooted at baseURL.
func New(baseURL string, opts ...venue.TransportOption) *Client {
	return &Client{
		transport: venue.NewTransport(baseURL, opts...),
		now:       time.Now,
	}
}

// QuoteRequest asks the venue to price a swap.
type QuoteRequest struct {
	BTCAmount string `json:"btcAmount"`
	RuneName  string `json:"runeName"`
	Sell      bool   `json:"sell"`
	Address   string `json:"address"`
}

type quoteResponse struct {
	BestMarket     string            `json:"bestMarket"`
	ExpectedOutput string            `json:"totalFormattedAmount"`
	TotalPrice     string            `json:"totalPrice"`
	SelectedOrders []domain.OrderRef `json:"selectedOrders"`
}

// FetchQuote requests a swap quote. The returned quote carries its fetch
// timestamp; callers own the TTL check before building a PSBT from it.
func (c *Client) FetchQuote(ctx context.Context, req QuoteRequest) (*domain.Quote, error) {
	var resp quoteResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/runes/quote", req, &resp, nil); err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	if len(resp.SelectedOrders) == 0 {
		return nil, venue.NewError(venue.KindNoLiquidity, "no orders available for "+req.RuneName)
	}

	q := &domain.Quote{
		FetchedAt:      c.now().UnixMilli(),
		SelectedOrders: resp.SelectedOrders,
	}
	if req.Sell {
		q.Side = domain.SideSell
		q.InputAsset = req.RuneName
		q.OutputAsset = "BTC"
	} else {
		q.Side = domain.SideBuy
		q.InputAsset = "BTC"
		q.OutputAsset = req.RuneName
	}
	q.Amount = parseDecimal(req.BTCAmount)
	q.ExpectedOutput = parseDecimal(resp.ExpectedOutput)
	return q, nil
}

// PSBTRequest asks the venue to construct an unsigned swap PSBT against the
// quote's selected orders.
type PSBTRequest struct {
	Orders          []domain.OrderRef `json:"orders"`
	OrdinalsAddress string            `json:"ordinalAddress"`
	PaymentAddress  string            `json:"paymentAddress"`
	PaymentPubKey   string            `json:"paymentPublicKey"`
	OrdinalsPubKey  string            `json:"ordinalPublicKey"`
	RuneName        string            `json:"runeName"`
	Sell            bool              `json:"sell"`
	FeeRate         uint64            `json:"feeRate"`
}

type psbtResponse struct {
	PSBTBase64 string `json:"psbtBase64"`
	SwapID     string `json:"swapId"`
}

// GetPSBT requests an unsigned swap proposal built at the given fee rate.
func (c *Client) GetPSBT(ctx context.Context, req PSBTRequest) (*domain.UnsignedProposal, error) {
	var resp psbtResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/runes/psbt/create", req, &resp, nil); err != nil {
		return nil, fmt.Errorf("create psbt: %w", err)
	}
	if resp.PSBTBase64 == "" || resp.SwapID == "" {
		return nil, venue.NewError(venue.KindUnavailable, "venue returned an incomplete proposal")
	}
	return &domain.UnsignedProposal{
		PSBTBase64:       resp.PSBTBase64,
		SwapID:           resp.SwapID,
		BuiltWithFeeRate: req.FeeRate,
	}, nil
}

// ConfirmRequest returns the signed PSBT for execution. SwapID is the venue's
// idempotency key and must come from the matching GetPSBT response.
type ConfirmRequest struct {
	Orders           []domain.OrderRef `json:"orders"`
	OrdinalsAddress  string            `json:"ordinalAddress"`
	PaymentAddress   string            `json:"paymentAddress"`
	SignedPSBTBase64 string            `json:"signedPsbtBase64"`
	SwapID           string            `json:"swapId"`
	RuneName         string            `json:"runeName"`
	Sell             bool              `json:"sell"`
}

type confirmResponse struct {
	TxID string `json:"txid"`
}

// ConfirmPSBT submits a signed swap proposal and returns the transaction id.
func (c *Client) ConfirmPSBT(ctx context.Context, req ConfirmRequest) (string, error) {
	var resp confirmResponse
	if err := c.transport.Do(ctx, http.MethodPost, "/runes/psbt/confirm", req, &resp, nil); err != nil {
		return "", fmt.Errorf("confirm psbt: %w", err)
	}
	if resp.TxID == "" {
		return "", venue.NewError(venue.KindUnavailable, "venue confirmed without a txid")
	}
	return resp.TxID, nil
}

type marketResponse struct {
	PriceSats    string `json:"floorUnitPrice"`
	PriceUSD     string `json:"priceUsd"`
	MarketCapUSD string `json:"marketCapUsd"`
}

// FetchMarket retrieves current market data for a rune.
func (c *Client) FetchMarket(ctx context.Context, runeName string) (*domain.MarketSnapshot, error) {
	var resp marketResponse
	path := "/runes/market?rune=" + urlQueryEscape(runeName)
	if err := c.transport.Do(ctx, http.MethodGet, path, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("fetch market: %w", err)
	}
	return &domain.MarketSnapshot{
		RuneName:     runeName,
		PriceSats:    parseDecimal(resp.PriceSats),
		PriceUSD:     parseDecimal(resp.PriceUSD),
		MarketCapUSD: parseDecimal(resp.MarketCapUSD),
		FetchedAt:    c.now().UnixMilli(),
	}, nil
}
