package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
)

func TestCheckoutHandler_Start_ReturnsRedirect(t *testing.T) {
	guestID := uuid.New()

	h := NewCheckoutHandler(&mockCheckoutService{
		startCheckoutFunc: func(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
			gotID, ok := identity.GuestSessionID()
			if !ok || gotID != guestID {
				t.Errorf("expected guest identity %v, got %v", guestID, identity)
			}
			return &domain.CheckoutRedirect{
				SessionID: "cs_test_abc123",
				URL:       "https://checkout.stripe.com/c/pay/cs_test_abc123",
			}, nil
		},
	}, nil)

	req := requestWithIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout", nil), domain.GuestIdentity(guestID))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload checkoutPayload
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.URL != "https://checkout.stripe.com/c/pay/cs_test_abc123" {
		t.Errorf("unexpected checkout URL %q", payload.URL)
	}
	if payload.SessionID != "cs_test_abc123" {
		t.Errorf("unexpected session ID %q", payload.SessionID)
	}
}

func TestCheckoutHandler_Start_EmptyCart(t *testing.T) {
	h := NewCheckoutHandler(&mockCheckoutService{
		startCheckoutFunc: func(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
			return nil, domain.ErrCartEmpty
		},
	}, nil)

	req := requestWithIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout", nil), domain.GuestIdentity(uuid.New()))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestCheckoutHandler_Start_AnonymousRejected(t *testing.T) {
	h := NewCheckoutHandler(&mockCheckoutService{
		startCheckoutFunc: func(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
			if !identity.IsAnonymous() {
				t.Errorf("expected anonymous identity, got %v", identity)
			}
			return nil, domain.ErrNoCartOwner
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", nil)
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}

func TestCheckoutHandler_Start_ProviderFailure(t *testing.T) {
	h := NewCheckoutHandler(&mockCheckoutService{
		startCheckoutFunc: func(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
			return nil, domain.WrapError(errors.New("stripe unreachable"), domain.EPAYMENT, "checkout.start", "Failed to start checkout")
		},
	}, nil)

	req := requestWithIdentity(httptest.NewRequest(http.MethodPost, "/api/checkout", nil), domain.GuestIdentity(uuid.New()))
	rr := httptest.NewRecorder()
	h.Start(rr, req)

	if rr.Code != http.StatusPaymentRequired {
		t.Errorf("expected status 402, got %d", rr.Code)
	}
}
