package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mindvault-app/mindvault/internal/api"
	"github.com/mindvault-app/mindvault/internal/ratelimit"
)

const rateLimitedMessage = "Too many requests. Please try again later."

// RateLimit enforces a fixed-window request limit per client for a named scope.
// Clients are keyed by forwarded IP; requests with no identifiable address
// share a single bucket.
func RateLimit(limiter *ratelimit.Limiter, scope string, maxRequests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retryAfter := limiter.Allow(scope, rateLimitClient(r), maxRequests, window)
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				api.Error(w, http.StatusTooManyRequests, rateLimitedMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimitClient(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return "unknown"
}
