package middleware

import (
	"context"
	"net/http"
)

// ClientIPContextKey is the context key for the resolved client IP.
const ClientIPContextKey contextKey = "client_ip"

// WithClientIP resolves the client IP once per request and stores it in
// the context for the rate limiter and request logger. Resolution
// trusts X-Forwarded-For and X-Real-IP, so the app must only be
// reachable through the proxy that sets them.
func WithClientIP() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPContextKey, GetClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIPFromContext returns the IP stored by WithClientIP, or ""
// when the middleware did not run.
func GetClientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPContextKey).(string)
	return ip
}
