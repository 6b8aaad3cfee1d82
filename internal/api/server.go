// Package api is the HTTP surface: a thin JSON proxy in front of the venue
// clients, the session service, and the market snapshot cache. Handlers
// validate, check rate limits and session tokens, call the venue, and map the
// failure taxonomy to status codes; swap orchestration itself runs
// client-side (or via cmd/swap) against these same endpoints.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"runesswap/internal/domain"
	"runesswap/internal/fees"
	"runesswap/internal/observability"
	"runesswap/internal/ratelimit"
	"runesswap/internal/session"
	"runesswap/internal/venue/liquidium"
	"runesswap/internal/venue/satsterminal"
)

// RateLimitPerMinute is the per-identity admission budget on sensitive routes.
const RateLimitPerMinute = 30

// LiquidityClient is the slice of the liquidity-venue client the API uses.
type LiquidityClient interface {
	FetchQuote(ctx context.Context, req satsterminal.QuoteRequest) (*domain.Quote, error)
	GetPSBT(ctx context.Context, req satsterminal.PSBTRequest) (*domain.UnsignedProposal, error)
	ConfirmPSBT(ctx context.Context, req satsterminal.ConfirmRequest) (string, error)
}

// LendingClient is the slice of the lending-venue client the API uses.
type LendingClient interface {
	GetChallenge(ctx context.Context, ordinalsAddress, paymentAddress string) (*liquidium.Challenge, error)
	SubmitChallenge(ctx context.Context, req liquidium.AuthRequest) (*liquidium.AuthResult, error)
	PrepareBorrow(ctx context.Context, token string, req domain.BorrowPrepare) (*domain.UnsignedProposal, error)
	SubmitBorrow(ctx context.Context, token string, req domain.BorrowSubmit) (string, error)
	PrepareRepay(ctx context.Context, token string, req domain.RepayPrepare) (*domain.UnsignedProposal, error)
	SubmitRepay(ctx context.Context, token string, req domain.RepaySubmit) (string, error)
}

// MarketData serves rune market snapshots.
type MarketData interface {
	Get(ctx context.Context, runeName string) (*domain.MarketSnapshot, error)
}

// Server wires the HTTP routes to their collaborators.
type Server struct {
	liquidity LiquidityClient
	lending   LendingClient
	sessions  *session.Service
	market    MarketData
	fees      fees.Source
	limiter   ratelimit.Limiter
	log       zerolog.Logger
	now       func() time.Time
}

// Options for creating a Server.
type Options struct {
	Liquidity LiquidityClient
	Lending   LendingClient
	Sessions  *session.Service
	Market    MarketData
	Fees      fees.Source
	Limiter   ratelimit.Limiter
	Logger    zerolog.Logger
	Now       func() time.Time // defaults to time.Now
}

// New creates a Server.
func New(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		liquidity: opts.Liquidity,
		lending:   opts.Lending,
		sessions:  opts.Sessions,
		market:    opts.Market,
		fees:      opts.Fees,
		limiter:   opts.Limiter,
		log:       opts.Logger,
		now:       now,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	api := r.Group("/api")
	{
		api.POST("/quote", s.rateLimit("quote"), s.handleQuote)
		api.POST("/psbt/create", s.rateLimit("psbt_create"), s.handlePSBTCreate)
		api.POST("/psbt/confirm", s.rateLimit("psbt_confirm"), s.handlePSBTConfirm)

		api.GET("/liquidium/challenge", s.rateLimit("challenge"), s.handleChallenge)
		api.POST("/liquidium/auth", s.rateLimit("auth"), s.handleAuth)
		api.POST("/liquidium/borrow/prepare", s.rateLimit("borrow_prepare"), s.handleBorrowPrepare)
		api.POST("/liquidium/borrow/submit", s.rateLimit("borrow_submit"), s.handleBorrowSubmit)
		api.POST("/liquidium/repay", s.rateLimit("repay"), s.handleRepay)

		api.GET("/market/:rune", s.handleMarket)
		api.GET("/fees/recommended", s.handleFees)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}
