package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitMiddleware allows at most requests per window from a single client IP.
// Rejected requests get 429 in the standard error envelope.
func RateLimitMiddleware(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		}),
	)
}
