package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"runesswap/internal/btcaddr"
	"runesswap/internal/domain"
	"runesswap/internal/venue/liquidium"
	"runesswap/internal/venue/satsterminal"
)

// --- swap: quote ---

type quoteBody struct {
	BTCAmount string `json:"btcAmount" binding:"required"`
	RuneName  string `json:"runeName" binding:"required"`
	Sell      bool   `json:"sell"`
	Address   string `json:"address" binding:"required"`
}

type quoteData struct {
	InputAsset     string            `json:"inputAsset"`
	OutputAsset    string            `json:"outputAsset"`
	Amount         decimal.Decimal   `json:"amount"`
	ExpectedOutput decimal.Decimal   `json:"expectedOutput"`
	Side           string            `json:"side"`
	SelectedOrders []domain.OrderRef `json:"selectedOrders"`
	FetchedAt      int64             `json:"fetchedAt"`
	TTLMs          int64             `json:"ttlMs"`
}

func (s *Server) handleQuote(c *gin.Context) {
	var body quoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	quote, err := s.liquidity.FetchQuote(c.Request.Context(), satsterminal.QuoteRequest{
		BTCAmount: body.BTCAmount,
		RuneName:  body.RuneName,
		Sell:      body.Sell,
		Address:   body.Address,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, quoteData{
		InputAsset:     quote.InputAsset,
		OutputAsset:    quote.OutputAsset,
		Amount:         quote.Amount,
		ExpectedOutput: quote.ExpectedOutput,
		Side:           quote.Side,
		SelectedOrders: quote.SelectedOrders,
		FetchedAt:      quote.FetchedAt,
		TTLMs:          domain.QuoteTTLMs,
	})
}

// --- swap: psbt create/confirm ---

type psbtCreateBody struct {
	Orders         []domain.OrderRef `json:"orders" binding:"required,min=1"`
	OrdinalAddress string            `json:"ordinalAddress" binding:"required"`
	PaymentAddress string            `json:"paymentAddress" binding:"required"`
	PaymentPubKey  string            `json:"paymentPublicKey" binding:"required"`
	OrdinalPubKey  string            `json:"ordinalPublicKey" binding:"required"`
	RuneName       string            `json:"runeName" binding:"required"`
	Sell           bool              `json:"sell"`
	FeeRate        uint64            `json:"feeRate" binding:"required"`
	QuoteFetchedAt int64             `json:"quoteFetchedAt"`
}

func (s *Server) handlePSBTCreate(c *gin.Context) {
	var body psbtCreateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	// When the caller discloses the quote age, expiry is caught here without
	// a venue round trip.
	if body.QuoteFetchedAt > 0 {
		q := domain.Quote{FetchedAt: body.QuoteFetchedAt}
		if !q.IsValid(s.now()) {
			respondError(c, http.StatusGone, "quote expired, please fetch a new quote", nil)
			return
		}
	}

	proposal, err := s.liquidity.GetPSBT(c.Request.Context(), satsterminal.PSBTRequest{
		Orders:          body.Orders,
		OrdinalsAddress: body.OrdinalAddress,
		PaymentAddress:  body.PaymentAddress,
		PaymentPubKey:   body.PaymentPubKey,
		OrdinalsPubKey:  body.OrdinalPubKey,
		RuneName:        body.RuneName,
		Sell:            body.Sell,
		FeeRate:         body.FeeRate,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{
		"psbtBase64": proposal.PSBTBase64,
		"swapId":     proposal.SwapID,
		"feeRate":    proposal.BuiltWithFeeRate,
	})
}

type psbtConfirmBody struct {
	Orders           []domain.OrderRef `json:"orders" binding:"required,min=1"`
	OrdinalAddress   string            `json:"ordinalAddress" binding:"required"`
	PaymentAddress   string            `json:"paymentAddress" binding:"required"`
	SignedPSBTBase64 string            `json:"signedPsbtBase64" binding:"required"`
	SwapID           string            `json:"swapId" binding:"required"`
	RuneName         string            `json:"runeName" binding:"required"`
	Sell             bool              `json:"sell"`
}

func (s *Server) handlePSBTConfirm(c *gin.Context) {
	var body psbtConfirmBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	txID, err := s.liquidity.ConfirmPSBT(c.Request.Context(), satsterminal.ConfirmRequest{
		Orders:           body.Orders,
		OrdinalsAddress:  body.OrdinalAddress,
		PaymentAddress:   body.PaymentAddress,
		SignedPSBTBase64: body.SignedPSBTBase64,
		SwapID:           body.SwapID,
		RuneName:         body.RuneName,
		Sell:             body.Sell,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{"txid": txID})
}

// --- lending: challenge / auth ---

func (s *Server) handleChallenge(c *gin.Context) {
	ordinals := c.Query("ordinalsAddress")
	payment := c.Query("paymentAddress")
	if ordinals == "" || payment == "" {
		respondError(c, http.StatusBadRequest, "ordinalsAddress and paymentAddress are required", nil)
		return
	}
	if !btcaddr.IsValid(ordinals) || !btcaddr.IsValid(payment) {
		respondError(c, http.StatusBadRequest, "malformed bitcoin address", nil)
		return
	}

	challenge, err := s.lending.GetChallenge(c.Request.Context(), ordinals, payment)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondOK(c, challenge)
}

type authBody struct {
	OrdinalsAddress   string `json:"ordinalsAddress" binding:"required"`
	OrdinalsSignature string `json:"ordinalsSignature" binding:"required"`
	OrdinalsNonce     string `json:"ordinalsNonce" binding:"required"`
	PaymentAddress    string `json:"paymentAddress"`
	PaymentSignature  string `json:"paymentSignature"`
	PaymentNonce      string `json:"paymentNonce"`
	WalletKind        string `json:"wallet" binding:"required"`
}

func (s *Server) handleAuth(c *gin.Context) {
	var body authBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	result, err := s.lending.SubmitChallenge(c.Request.Context(), liquidium.AuthRequest{
		OrdinalsAddress:   body.OrdinalsAddress,
		OrdinalsSignature: body.OrdinalsSignature,
		OrdinalsNonce:     body.OrdinalsNonce,
		PaymentAddress:    body.PaymentAddress,
		PaymentSignature:  body.PaymentSignature,
		PaymentNonce:      body.PaymentNonce,
		WalletKind:        body.WalletKind,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	if err := s.sessions.IssueToken(c.Request.Context(), body.OrdinalsAddress, result.UserJWT, result.ExpiresAt); err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{
		"walletAddress": body.OrdinalsAddress,
		"expiresAt":     result.ExpiresAt,
	})
}

// --- lending: borrow / repay ---

type borrowPrepareBody struct {
	WalletAddress  string `json:"walletAddress" binding:"required"`
	OfferID        string `json:"offerId" binding:"required"`
	TokenAmount    string `json:"tokenAmount" binding:"required"`
	FeeRate        uint64 `json:"feeRate" binding:"required"`
	OrdinalAddress string `json:"ordinalAddress" binding:"required"`
	OrdinalPubKey  string `json:"ordinalPublicKey" binding:"required"`
	PaymentAddress string `json:"paymentAddress" binding:"required"`
	PaymentPubKey  string `json:"paymentPublicKey" binding:"required"`
	WalletKind     string `json:"wallet" binding:"required"`
}

func (s *Server) handleBorrowPrepare(c *gin.Context) {
	var body borrowPrepareBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	token, err := s.sessions.GetValidToken(c.Request.Context(), body.WalletAddress)
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	proposal, err := s.lending.PrepareBorrow(c.Request.Context(), token, domain.BorrowPrepare{
		OfferID:        body.OfferID,
		TokenAmount:    body.TokenAmount,
		FeeRate:        body.FeeRate,
		OrdinalAddress: body.OrdinalAddress,
		OrdinalPubKey:  body.OrdinalPubKey,
		PaymentAddress: body.PaymentAddress,
		PaymentPubKey:  body.PaymentPubKey,
		WalletKind:     body.WalletKind,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{
		"psbtBase64":     proposal.PSBTBase64,
		"prepareOfferId": proposal.OfferID,
	})
}

type borrowSubmitBody struct {
	WalletAddress    string `json:"walletAddress" binding:"required"`
	SignedPSBTBase64 string `json:"signedPsbtBase64" binding:"required"`
	PrepareOfferID   string `json:"prepareOfferId" binding:"required"`
}

func (s *Server) handleBorrowSubmit(c *gin.Context) {
	var body borrowSubmitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	token, err := s.sessions.GetValidToken(c.Request.Context(), body.WalletAddress)
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	loanTxID, err := s.lending.SubmitBorrow(c.Request.Context(), token, domain.BorrowSubmit{
		SignedPSBTBase64: body.SignedPSBTBase64,
		PrepareOfferID:   body.PrepareOfferID,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	respondOK(c, gin.H{"loanTransactionId": loanTxID})
}

// repayBody covers both repay phases; the payload shape picks the phase. A
// signed PSBT means submit, otherwise prepare.
type repayBody struct {
	WalletAddress string `json:"walletAddress" binding:"required"`

	// prepare phase
	LoanID         string `json:"loanId"`
	FeeRate        uint64 `json:"feeRate"`
	PaymentAddress string `json:"paymentAddress"`
	PaymentPubKey  string `json:"paymentPublicKey"`

	// submit phase
	SignedPSBTBase64 string `json:"signedPsbtBase64"`
	PrepareOfferID   string `json:"prepareOfferId"`
}

func (s *Server) handleRepay(c *gin.Context) {
	var body repayBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	token, err := s.sessions.GetValidToken(c.Request.Context(), body.WalletAddress)
	if err != nil {
		s.respondFailure(c, err)
		return
	}

	if body.SignedPSBTBase64 != "" {
		if body.PrepareOfferID == "" {
			respondError(c, http.StatusBadRequest, "prepareOfferId is required to submit a repayment", nil)
			return
		}
		txID, err := s.lending.SubmitRepay(c.Request.Context(), token, domain.RepaySubmit{
			SignedPSBTBase64: body.SignedPSBTBase64,
			PrepareOfferID:   body.PrepareOfferID,
		})
		if err != nil {
			s.respondFailure(c, err)
			return
		}
		respondOK(c, gin.H{"loanTransactionId": txID})
		return
	}

	if body.LoanID == "" || body.FeeRate == 0 || body.PaymentAddress == "" || body.PaymentPubKey == "" {
		respondError(c, http.StatusBadRequest,
			"loanId, feeRate, paymentAddress and paymentPublicKey are required to prepare a repayment", nil)
		return
	}
	proposal, err := s.lending.PrepareRepay(c.Request.Context(), token, domain.RepayPrepare{
		LoanID:         body.LoanID,
		FeeRate:        body.FeeRate,
		PaymentAddress: body.PaymentAddress,
		PaymentPubKey:  body.PaymentPubKey,
	})
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondOK(c, gin.H{
		"psbtBase64":     proposal.PSBTBase64,
		"prepareOfferId": proposal.OfferID,
	})
}

// --- market data / fees ---

type marketData struct {
	RuneName     string          `json:"runeName"`
	PriceSats    decimal.Decimal `json:"priceSats"`
	PriceUSD     decimal.Decimal `json:"priceUsd"`
	MarketCapUSD decimal.Decimal `json:"marketCapUsd"`
	FetchedAt    int64           `json:"fetchedAt"`
}

func (s *Server) handleMarket(c *gin.Context) {
	runeName := c.Param("rune")
	snapshot, err := s.market.Get(c.Request.Context(), runeName)
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondOK(c, marketData{
		RuneName:     snapshot.RuneName,
		PriceSats:    snapshot.PriceSats,
		PriceUSD:     snapshot.PriceUSD,
		MarketCapUSD: snapshot.MarketCapUSD,
		FetchedAt:    snapshot.FetchedAt,
	})
}

func (s *Server) handleFees(c *gin.Context) {
	estimate, err := s.fees.Recommended(c.Request.Context())
	if err != nil {
		s.respondFailure(c, err)
		return
	}
	respondOK(c, gin.H{
		"fastestFee":  estimate.Fastest,
		"halfHourFee": estimate.HalfHour,
		"hourFee":     estimate.Hour,
		"minimumFee":  estimate.Minimum,
	})
}
