// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP surface metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitRejections *prometheus.CounterVec

	// Venue metrics
	VenueCalls       *prometheus.CounterVec
	VenueCallLatency *prometheus.HistogramVec
	VenueFailures    *prometheus.CounterVec

	// Swap metrics
	SwapAttempts  *prometheus.CounterVec
	FeeBumps      prometheus.Counter
	QuotesExpired prometheus.Counter

	// Session metrics
	TokensIssued  prometheus.Counter
	TokensExpired prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "runesswap"
	}

	return &Metrics{
		// HTTP surface metrics
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of rate-limited requests by route",
		}, []string{"route"}),

		// Venue metrics
		VenueCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "calls_total",
			Help:      "Total number of venue calls by venue and operation",
		}, []string{"venue", "operation"}),
		VenueCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "call_latency_seconds",
			Help:      "Venue call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"venue", "operation"}),
		VenueFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "venue",
			Name:      "failures_total",
			Help:      "Total number of venue failures by venue and kind",
		}, []string{"venue", "kind"}),

		// Swap metrics
		SwapAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "attempts_total",
			Help:      "Total number of swap attempts by outcome",
		}, []string{"outcome"}),
		FeeBumps: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "fee_bumps_total",
			Help:      "Total number of one-shot fee-rate bump retries",
		}),
		QuotesExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "swap",
			Name:      "quotes_expired_total",
			Help:      "Total number of attempts rejected on the quote TTL gate",
		}),

		// Session metrics
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "tokens_issued_total",
			Help:      "Total number of session tokens issued",
		}),
		TokensExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "tokens_expired_total",
			Help:      "Total number of session token reads rejected as expired",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// RecordRateLimitRejection increments the rejection counter for a route.
func RecordRateLimitRejection(route string) {
	DefaultMetrics.RateLimitRejections.WithLabelValues(route).Inc()
}

// RecordVenueCall records one venue call and its latency.
func RecordVenueCall(venue, operation string, seconds float64) {
	DefaultMetrics.VenueCalls.WithLabelValues(venue, operation).Inc()
	DefaultMetrics.VenueCallLatency.WithLabelValues(venue, operation).Observe(seconds)
}

// RecordVenueFailure records a classified venue failure.
func RecordVenueFailure(venue, kind string) {
	DefaultMetrics.VenueFailures.WithLabelValues(venue, kind).Inc()
}

// RecordSwapAttempt records a swap attempt outcome.
func RecordSwapAttempt(outcome string) {
	DefaultMetrics.SwapAttempts.WithLabelValues(outcome).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
