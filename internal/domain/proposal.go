package domain

// UnsignedProposal is an unsigned PSBT returned by a venue's prepare endpoint.
// It is owned by the attempt that requested it and superseded, never patched,
// on retry.
type UnsignedProposal struct {
	PSBTBase64       string // unsigned transaction, base64 PSBT encoding
	SwapID           string // liquidity-venue identifier (swaps)
	OfferID          string // lending-venue identifier (borrow/repay)
	BuiltWithFeeRate uint64 // sats/vByte the proposal was constructed for
}

// ID returns the venue idempotency key for the proposal, whichever venue
// produced it.
func (p *UnsignedProposal) ID() string {
	if p.SwapID != "" {
		return p.SwapID
	}
	return p.OfferID
}

// SignedProposal is the signed counterpart of an UnsignedProposal, produced
// by the out-of-process wallet signer and consumed exactly once by submit.
type SignedProposal struct {
	SignedPSBTBase64 string
	ProposalID       string // must match the originating UnsignedProposal.ID()
}
