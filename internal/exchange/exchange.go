// Package exchange implements the two-phase prepare/submit PSBT protocol as
// an explicit state machine. The same machine drives swaps against the
// liquidity venue and borrow/repay against the lending venue; venue and
// payload specifics are injected as prepare/submit functions.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"runesswap/internal/domain"
)

// State is the protocol position of one prepare/submit attempt.
type State string

const (
	StateIdle              State = "idle"
	StatePreparing         State = "preparing"
	StateAwaitingSignature State = "awaiting_signature"
	StateSubmitting        State = "submitting"
	StateConfirmed         State = "confirmed"
	StateFailed            State = "failed"
	StateCancelled         State = "cancelled"
)

// ErrInvalidTransition is returned for out-of-order protocol use, e.g.
// submitting before preparing or submitting twice.
var ErrInvalidTransition = errors.New("invalid protocol transition")

// Event is one recorded protocol transition.
type Event struct {
	Seq   int
	At    time.Time
	State State
	Note  string
}

// PrepareFunc asks a venue to build an unsigned proposal at the given fee
// rate. The payload mapping to the venue's wire format lives in the closure.
type PrepareFunc func(ctx context.Context, feeRate uint64) (*domain.UnsignedProposal, error)

// SubmitFunc returns a signed proposal to the venue and yields the
// transaction id.
type SubmitFunc func(ctx context.Context, signed *domain.SignedProposal) (string, error)

// Exchange runs one prepare/submit attempt. Not safe for concurrent use; an
// attempt is a single flow by design.
type Exchange struct {
	prepare PrepareFunc
	submit  SubmitFunc
	onEvent func(Event)
	now     func() time.Time

	state    State
	proposal *domain.UnsignedProposal
	events   []Event
}

// Options for creating an Exchange.
type Options struct {
	Prepare PrepareFunc
	Submit  SubmitFunc
	OnEvent func(Event)      // optional transition sink
	Now     func() time.Time // defaults to time.Now
}

// New creates an Exchange in StateIdle.
func New(opts Options) *Exchange {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Exchange{
		prepare: opts.Prepare,
		submit:  opts.Submit,
		onEvent: opts.OnEvent,
		now:     now,
		state:   StateIdle,
	}
}

// State returns the current protocol state.
func (e *Exchange) State() State {
	return e.state
}

// Proposal returns the in-flight unsigned proposal, nil outside
// AwaitingSignature/Submitting.
func (e *Exchange) Proposal() *domain.UnsignedProposal {
	return e.proposal
}

// Events returns the ordered transition log for this attempt.
func (e *Exchange) Events() []Event {
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

func (e *Exchange) transition(state State, note string) {
	e.state = state
	ev := Event{
		Seq:   len(e.events) + 1,
		At:    e.now(),
		State: state,
		Note:  note,
	}
	e.events = append(e.events, ev)
	if e.onEvent != nil {
		e.onEvent(ev)
	}
}

// Prepare requests an unsigned proposal from the venue. Valid only from
// StateIdle; on venue failure the attempt lands in StateFailed.
func (e *Exchange) Prepare(ctx context.Context, feeRate uint64) (*domain.UnsignedProposal, error) {
	if e.state != StateIdle {
		return nil, fmt.Errorf("%w: prepare from %s", ErrInvalidTransition, e.state)
	}

	e.transition(StatePreparing, fmt.Sprintf("fee rate %d sat/vB", feeRate))

	proposal, err := e.prepare(ctx, feeRate)
	if err != nil {
		e.transition(StateFailed, err.Error())
		return nil, err
	}

	e.proposal = proposal
	e.transition(StateAwaitingSignature, "proposal "+proposal.ID())
	return proposal, nil
}

// Submit returns the signed counterpart of the in-flight proposal to the
// venue. Valid only from StateAwaitingSignature; the signed payload is bound
// to the proposal identifier from this attempt's Prepare, which makes the
// venue-side submission idempotent.
func (e *Exchange) Submit(ctx context.Context, signedPSBTBase64 string) (string, error) {
	if e.state != StateAwaitingSignature {
		return "", fmt.Errorf("%w: submit from %s", ErrInvalidTransition, e.state)
	}

	signed := &domain.SignedProposal{
		SignedPSBTBase64: signedPSBTBase64,
		ProposalID:       e.proposal.ID(),
	}

	e.transition(StateSubmitting, "proposal "+signed.ProposalID)

	txID, err := e.submit(ctx, signed)
	if err != nil {
		e.transition(StateFailed, err.Error())
		return "", err
	}

	e.proposal = nil
	e.transition(StateConfirmed, "txid "+txID)
	return txID, nil
}

// Cancel discards the in-flight proposal without side effects. Valid from
// StateAwaitingSignature (user aborted while the signer was open); a
// cancelled attempt requires a fresh Prepare on a new Exchange — stale
// proposals are never resubmitted.
func (e *Exchange) Cancel() error {
	if e.state != StateAwaitingSignature {
		return fmt.Errorf("%w: cancel from %s", ErrInvalidTransition, e.state)
	}
	e.proposal = nil
	e.transition(StateCancelled, "proposal discarded")
	return nil
}
