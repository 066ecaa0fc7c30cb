package middleware

import (
	"log/slog"
	"net"
	"net/http"

	rl "github.com/rogerio-castellano/product-catalog/internal/http/rate_limiter"
)

// RateLimit rejects clients that exceed their token bucket with 429.
func RateLimit(limiter *rl.Limiter, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				logger.WarnContext(r.Context(), "Rate limit exceeded", slog.String("client.address", ip))
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
