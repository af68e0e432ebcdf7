package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits every route to the given number of requests per
// second independently of the others. Requests above the limit are rejected
// with 429 before reaching the handler.
func RateLimitMiddleware(logger zerolog.Logger, limit rate.Limit, burst int) mux.MiddlewareFunc {
	limiters := make(map[string]*rate.Limiter, len(routes))
	for _, r := range routes {
		limiters[r.Name] = rate.NewLimiter(limit, burst)
	}
	// requests that matched no route share one limiter
	defaultLimiter := rate.NewLimiter(limit, burst)

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			name := ""
			if current := mux.CurrentRoute(req); current != nil {
				name = current.GetName()
			}
			limiter, ok := limiters[name]
			if !ok {
				limiter = defaultLimiter
			}

			if !limiter.Allow() {
				logger.Info().
					Str("route", name).
					Float64("limit", float64(limiter.Limit())).
					Msg("rate limit exceeded")

				h := &Handler{log: logger}
				h.errorResponse(w, http.StatusTooManyRequests, "rate limit reached, please retry later", RequestID(req), logger)
				return
			}
			handler.ServeHTTP(w, req)
		})
	}
}
