package domain

// FeeTier identifies a confirmation-target bucket for fee estimation.
type FeeTier string

// Fee tiers ordered slowest to fastest.
const (
	FeeTierHour     FeeTier = "hour"
	FeeTierHalfHour FeeTier = "halfHour"
	FeeTierFastest  FeeTier = "fastest"
)

// FeeEstimate holds the current sats/vByte recommendation per tier.
type FeeEstimate struct {
	Fastest     uint64
	HalfHour    uint64
	Hour        uint64
	Minimum     uint64
	FetchedAtMs int64
}

// Rate returns the sats/vByte for the given tier, defaulting to fastest for
// unknown tiers.
func (f *FeeEstimate) Rate(tier FeeTier) uint64 {
	switch tier {
	case FeeTierHour:
		return f.Hour
	case FeeTierHalfHour:
		return f.HalfHour
	default:
		return f.Fastest
	}
}

// Bump returns the next-higher tier and its rate. When already at the fastest
// tier the rate is nudged by one sat/vByte so the retried prepare never reuses
// the rejected rate.
func (f *FeeEstimate) Bump(tier FeeTier) (FeeTier, uint64) {
	switch tier {
	case FeeTierHour:
		return FeeTierHalfHour, f.HalfHour
	case FeeTierHalfHour:
		return FeeTierFastest, f.Fastest
	default:
		return FeeTierFastest, f.Fastest + 1
	}
}
