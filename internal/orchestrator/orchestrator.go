// Package orchestrator drives a full swap attempt: quote TTL gate, PSBT
// prepare via the exchange protocol, out-of-process signing, signed-PSBT
// submission, and the one-shot fee-rate bump retry.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"runesswap/internal/domain"
	"runesswap/internal/exchange"
	"runesswap/internal/fees"
	"runesswap/internal/venue"
	"runesswap/internal/venue/satsterminal"
)

// Terminal outcomes the caller branches on.
var (
	// ErrQuoteExpired means the held quote aged past its TTL before any
	// network call was made.
	ErrQuoteExpired = errors.New("quote expired")

	// ErrSigningCancelled means the user aborted while the signer was open.
	ErrSigningCancelled = errors.New("signing cancelled")
)

// EventType tags one entry on the attempt timeline.
type EventType string

const (
	EventQuoteExpired      EventType = "quote_expired"
	EventPreparing         EventType = "preparing"
	EventAwaitingSignature EventType = "awaiting_signature"
	EventSubmitting        EventType = "submitting"
	EventFeeBumped         EventType = "fee_bumped"
	EventSwapSuccess       EventType = "swap_success"
	EventFailed            EventType = "failed"
	EventCancelled         EventType = "cancelled"
)

// Event is one entry on the attempt timeline. The timeline is ordered and
// complete: a UI or log can reconstruct the attempt from it alone.
type Event struct {
	Seq  int
	At   time.Time
	Type EventType
	Note string
}

// Signer produces a signed PSBT for an unsigned one. It runs out of process
// (wallet software, possibly a human) and is awaited without an
// orchestrator-imposed timeout.
type Signer interface {
	Sign(ctx context.Context, psbtBase64 string) (string, error)
}

// LiquidityVenue is the slice of the liquidity-venue client the orchestrator
// needs.
type LiquidityVenue interface {
	GetPSBT(ctx context.Context, req satsterminal.PSBTRequest) (*domain.UnsignedProposal, error)
	ConfirmPSBT(ctx context.Context, req satsterminal.ConfirmRequest) (string, error)
}

// SwapRequest is one orchestrated swap attempt's inputs.
type SwapRequest struct {
	Quote           *domain.Quote
	RuneName        string
	Sell            bool
	OrdinalsAddress string
	OrdinalsPubKey  string
	PaymentAddress  string
	PaymentPubKey   string

	// FeeTier selects the starting estimate tier; defaults to fastest.
	FeeTier domain.FeeTier
	// FeeRate overrides the estimate for the first prepare when non-zero.
	FeeRate uint64
}

// Result is the attempt outcome plus its full event timeline. Events are
// populated on failure paths too.
type Result struct {
	AttemptID string
	TxID      string
	FeeRate   uint64
	Events    []Event
}

// Orchestrator executes swap attempts.
type Orchestrator struct {
	venue  LiquidityVenue
	fees   fees.Source
	signer Signer
	log    zerolog.Logger
	now    func() time.Time
}

// Options for creating an Orchestrator.
type Options struct {
	Venue  LiquidityVenue
	Fees   fees.Source
	Signer Signer
	Logger zerolog.Logger
	Now    func() time.Time // defaults to time.Now
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		venue:  opts.Venue,
		fees:   opts.Fees,
		signer: opts.Signer,
		log:    opts.Logger,
		now:    now,
	}
}

// attempt accumulates the timeline for one Run call.
type attempt struct {
	id     string
	now    func() time.Time
	events []Event
}

func (a *attempt) emit(t EventType, note string) {
	a.events = append(a.events, Event{
		Seq:  len(a.events) + 1,
		At:   a.now(),
		Type: t,
		Note: note,
	})
}

// Run drives one swap attempt end to end. The quote's TTL is checked before
// any network call; a "fee rate too low" rejection from prepare or submit is
// retried exactly once at the next fee tier; every other failure terminates
// the attempt with the venue's message.
func (o *Orchestrator) Run(ctx context.Context, req SwapRequest) (*Result, error) {
	a := &attempt{id: uuid.NewString(), now: o.now}
	result := &Result{AttemptID: a.id}
	log := o.log.With().Str("attempt", a.id).Str("rune", req.RuneName).Logger()

	if !req.Quote.IsValid(o.now()) {
		a.emit(EventQuoteExpired, fmt.Sprintf("quote is %dms old", req.Quote.AgeMs(o.now())))
		result.Events = a.events
		log.Warn().Int64("age_ms", req.Quote.AgeMs(o.now())).Msg("quote expired before prepare")
		return result, ErrQuoteExpired
	}

	tier := req.FeeTier
	if tier == "" {
		tier = domain.FeeTierFastest
	}
	estimate, err := o.fees.Recommended(ctx)
	if err != nil {
		a.emit(EventFailed, err.Error())
		result.Events = a.events
		return result, fmt.Errorf("fee estimate: %w", err)
	}
	rate := req.FeeRate
	if rate == 0 {
		rate = estimate.Rate(tier)
	}

	bumped := false
	for {
		txID, err := o.runAttempt(ctx, a, req, rate)
		if err == nil {
			result.TxID = txID
			result.FeeRate = rate
			a.emit(EventSwapSuccess, "txid "+txID)
			result.Events = a.events
			log.Info().Str("txid", txID).Uint64("fee_rate", rate).Msg("swap confirmed")
			return result, nil
		}

		if errors.Is(err, ErrSigningCancelled) {
			a.emit(EventCancelled, "user aborted while awaiting signature")
			result.Events = a.events
			return result, err
		}

		if venue.IsKind(err, venue.KindFeeTooLow) && !bumped {
			bumped = true
			prev := rate
			tier, rate = estimate.Bump(tier)
			if rate <= prev {
				rate = prev + 1
			}
			a.emit(EventFeeBumped, fmt.Sprintf("%d -> %d sat/vB (%s)", prev, rate, tier))
			log.Warn().Uint64("from", prev).Uint64("to", rate).Msg("fee rejected, retrying once at a higher rate")
			continue
		}

		a.emit(EventFailed, err.Error())
		result.Events = a.events
		log.Error().Err(err).Msg("swap attempt failed")
		return result, err
	}
}

// runAttempt is one pass through the prepare/sign/submit exchange.
func (o *Orchestrator) runAttempt(ctx context.Context, a *attempt, req SwapRequest, feeRate uint64) (string, error) {
	ex := exchange.New(exchange.Options{
		Now: o.now,
		Prepare: func(ctx context.Context, feeRate uint64) (*domain.UnsignedProposal, error) {
			return o.venue.GetPSBT(ctx, satsterminal.PSBTRequest{
				Orders:          req.Quote.SelectedOrders,
				OrdinalsAddress: req.OrdinalsAddress,
				OrdinalsPubKey:  req.OrdinalsPubKey,
				PaymentAddress:  req.PaymentAddress,
				PaymentPubKey:   req.PaymentPubKey,
				RuneName:        req.RuneName,
				Sell:            req.Sell,
				FeeRate:         feeRate,
			})
		},
		Submit: func(ctx context.Context, signed *domain.SignedProposal) (string, error) {
			return o.venue.ConfirmPSBT(ctx, satsterminal.ConfirmRequest{
				Orders:           req.Quote.SelectedOrders,
				OrdinalsAddress:  req.OrdinalsAddress,
				PaymentAddress:   req.PaymentAddress,
				SignedPSBTBase64: signed.SignedPSBTBase64,
				SwapID:           signed.ProposalID,
				RuneName:         req.RuneName,
				Sell:             req.Sell,
			})
		},
		OnEvent: func(ev exchange.Event) {
			switch ev.State {
			case exchange.StatePreparing:
				a.emit(EventPreparing, ev.Note)
			case exchange.StateAwaitingSignature:
				a.emit(EventAwaitingSignature, ev.Note)
			case exchange.StateSubmitting:
				a.emit(EventSubmitting, ev.Note)
			}
		},
	})

	proposal, err := ex.Prepare(ctx, feeRate)
	if err != nil {
		return "", err
	}

	signed, err := o.signer.Sign(ctx, proposal.PSBTBase64)
	if err != nil {
		// An aborted signer discards the proposal without a submit call.
		if errors.Is(err, ErrSigningCancelled) || errors.Is(err, context.Canceled) {
			_ = ex.Cancel()
			return "", ErrSigningCancelled
		}
		return "", fmt.Errorf("sign proposal: %w", err)
	}

	return ex.Submit(ctx, signed)
}
