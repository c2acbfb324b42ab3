// Package middleware holds the HTTP middleware chain: request IDs,
// client IP resolution, request logging, metrics, rate limiting, body
// and time limits, security headers, and identity resolution.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/stridewear/stride/internal/domain"
)

// respondUnauthorized writes the 401 used by auth middleware. It is
// self-contained rather than calling into the handler package, which
// imports this one.
func respondUnauthorized(w http.ResponseWriter, r *http.Request) {
	logger := GetLogger(r.Context())
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
	}
	if reqID := GetRequestID(r.Context()); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}
	logger.Info("unauthenticated request rejected", attrs...)

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{
				"code":    domain.EUNAUTHORIZED,
				"message": "Authentication required",
			},
		})
		return
	}
	http.Error(w, "Authentication required", http.StatusUnauthorized)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasSuffix(r.URL.Path, ".json")
}
