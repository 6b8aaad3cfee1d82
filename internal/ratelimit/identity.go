package ratelimit

import (
	"net/http"
	"strings"
)

// UnknownIdentity is the shared bucket for requests whose client identity
// cannot be derived from proxy headers.
const UnknownIdentity = "unknown"

// ClientIdentity derives the rate-limit identity for a request: the first hop
// of X-Forwarded-For, else X-Real-IP, else a constant bucket.
//
// This is spoofable and coarse. A production deployment needs a trust
// boundary around which proxy headers are authoritative; accepted limitation
// for now.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	return UnknownIdentity
}

// Key builds the limiter key for a route and client identity.
func Key(route, identity string) string {
	return route + ":" + identity
}
