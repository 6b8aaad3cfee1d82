// Package fees estimates network fee rates from a mempool-style
// recommended-fees endpoint.
package fees

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"runesswap/internal/domain"
	"runesswap/internal/venue"
)

// Source provides the current fee-rate recommendation.
type Source interface {
	Recommended(ctx context.Context) (*domain.FeeEstimate, error)
}

// Estimator fetches recommended fee rates over HTTP.
type Estimator struct {
	transport *venue.Transport
	now       func() time.Time
}

// NewEstimator creates an estimator rooted at baseURL.
func NewEstimator(baseURL string, opts ...venue.TransportOption) *Estimator {
	return &Estimator{
		transport: venue.NewTransport(baseURL, opts...),
		now:       time.Now,
	}
}

// Compile-time interface check.
var _ Source = (*Estimator)(nil)

type recommendedResponse struct {
	FastestFee  uint64 `json:"fastestFee"`
	HalfHourFee uint64 `json:"halfHourFee"`
	HourFee     uint64 `json:"hourFee"`
	MinimumFee  uint64 `json:"minimumFee"`
}

// Recommended fetches the current sats/vByte recommendation per tier.
func (e *Estimator) Recommended(ctx context.Context) (*domain.FeeEstimate, error) {
	var resp recommendedResponse
	if err := e.transport.Do(ctx, http.MethodGet, "/api/v1/fees/recommended", nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("fetch recommended fees: %w", err)
	}
	if resp.FastestFee == 0 {
		return nil, venue.NewError(venue.KindUnavailable, "fee source returned a zero fastest rate")
	}
	return &domain.FeeEstimate{
		Fastest:     resp.FastestFee,
		HalfHour:    resp.HalfHourFee,
		Hour:        resp.HourFee,
		Minimum:     resp.MinimumFee,
		FetchedAtMs: e.now().UnixMilli(),
	}, nil
}
