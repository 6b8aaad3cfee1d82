package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"runesswap/internal/observability"
	"runesswap/internal/ratelimit"
)

// observe records per-route request counts, statuses and latency.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		observability.RecordHTTPRequest(route, status, time.Since(start).Seconds())

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("route", route).
			Str("status", status).
			Dur("elapsed", time.Since(start)).
			Msg("request served")
	}
}

// rateLimit gates a route at RateLimitPerMinute per client identity. A
// limiter backend failure fails open: admission control is best effort and
// must not take the API down with it.
func (s *Server) rateLimit(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := ratelimit.ClientIdentity(c.Request)
		key := ratelimit.Key(route, identity)

		decision, err := s.limiter.Admit(c.Request.Context(), key, RateLimitPerMinute, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Str("route", route).Msg("rate limiter unavailable, admitting")
			return
		}
		if !decision.Allowed {
			observability.RecordRateLimitRejection(route)
			respondError(c, http.StatusTooManyRequests, "too many requests",
				gin.H{"retryAfterSeconds": decision.RetryAfterSeconds})
		}
	}
}
