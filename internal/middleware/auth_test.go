package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
)

func TestRequireUser(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := RequireUser(next)

	tests := []struct {
		name     string
		identity domain.Identity
		wantCode int
	}{
		{name: "anonymous_rejected", identity: domain.AnonymousIdentity(), wantCode: http.StatusUnauthorized},
		{name: "guest_rejected", identity: domain.GuestIdentity(uuid.New()), wantCode: http.StatusUnauthorized},
		{name: "user_passes", identity: domain.UserIdentity(uuid.New()), wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req = req.WithContext(domain.NewContextWithIdentity(req.Context(), tt.identity))
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

func TestRequireUserNoIdentityInContext(t *testing.T) {
	protected := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a signed-in user")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
