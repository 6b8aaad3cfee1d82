package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"runesswap/internal/session"
	"runesswap/internal/storage"
	"runesswap/internal/venue"
)

// errorBody is the error half of the response envelope.
type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, message string, details any) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   errorBody{Message: message, Details: details},
	})
}

// respondFailure maps a collaborator error to a status code and envelope.
// Unclassified failures degrade to a generic 500 so internal detail never
// leaks to the caller.
func (s *Server) respondFailure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		respondError(c, http.StatusUnauthorized, "authentication required", nil)
		return
	case errors.Is(err, session.ErrAuthExpired):
		respondError(c, http.StatusUnauthorized, "authentication expired, please sign in again", nil)
		return
	case errors.Is(err, storage.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found", nil)
		return
	}

	var ve *venue.Error
	if errors.As(err, &ve) {
		switch ve.Kind {
		case venue.KindValidation, venue.KindFeeTooLow:
			respondError(c, http.StatusBadRequest, ve.Message, nil)
		case venue.KindAuthRequired:
			respondError(c, http.StatusUnauthorized, "authentication required", nil)
		case venue.KindAuthExpired:
			respondError(c, http.StatusUnauthorized, "authentication expired, please sign in again", nil)
		case venue.KindQuoteExpired:
			respondError(c, http.StatusGone, "quote expired, please fetch a new quote", nil)
		case venue.KindNoLiquidity:
			respondError(c, http.StatusNotFound, ve.Message, nil)
		case venue.KindRateLimited:
			respondError(c, http.StatusTooManyRequests, "rate limited by upstream venue",
				gin.H{"retryAfterSeconds": ve.RetryAfterSeconds})
		default:
			respondError(c, http.StatusServiceUnavailable, "upstream venue unavailable", nil)
		}
		return
	}

	s.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	respondError(c, http.StatusInternalServerError, "internal error", nil)
}
