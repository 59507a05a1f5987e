package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"talentbridge/internal/model"
	"talentbridge/internal/ratelimit"
)

// AuthRateLimit applies fixed-window limits to the auth endpoints, one
// window per (route class, client IP). The store decides whether counters
// are process-local or shared.
type AuthRateLimit struct {
	store ratelimit.Store
}

func NewAuthRateLimit(store ratelimit.Store) *AuthRateLimit {
	return &AuthRateLimit{store: store}
}

func (m *AuthRateLimit) Limit(class string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := class + ":" + ExtractClientIP(r)

			result, err := m.store.Check(r.Context(), key, limit, window)
			if err != nil {
				// A broken counter store must not take the auth endpoints
				// down with it.
				slog.Error("rate limit check failed", "class", class, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.UnixMilli(), 10))

			if !result.Allowed {
				retryAfter := result.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(model.APIResponse{
					Success: false,
					Error: &model.APIError{
						Code:       "RATE_LIMITED",
						Message:    "Too many requests, please try again later",
						RetryAfter: retryAfter,
					},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
