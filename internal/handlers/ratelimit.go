package handlers

import (
	"net"
	"net/http"
	"strings"
)

// RateLimiter is the slice of the middleware limiter the login handler needs.
type RateLimiter interface {
	Allow(key string) bool
}

// allowRequest checks the limiter keyed by scope and client address. A nil
// limiter disables limiting, which keeps handler construction simple in tests.
func allowRequest(limiter RateLimiter, r *http.Request, scope string) bool {
	if limiter == nil {
		return true
	}

	key := clientIP(r)
	if scope != "" {
		key = scope + ":" + key
	}
	return limiter.Allow(key)
}

// clientIP resolves the caller's address, preferring proxy headers so every
// client behind the load balancer is not throttled as one.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		// First hop is the original client.
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
