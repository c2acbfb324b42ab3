package api

import (
	"log/slog"
	"net/http"

	"github.com/stridewear/stride/internal/domain"
	"github.com/stridewear/stride/internal/handler"
	"github.com/stridewear/stride/internal/telemetry"
)

// CheckoutHandler initiates hosted checkout sessions.
type CheckoutHandler struct {
	checkout domain.CheckoutService
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(checkout domain.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

type checkoutPayload struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// Start handles POST /api/checkout. The shopper is redirected to the
// hosted payment page; no order exists until payment completes.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	redirect, err := h.checkout.StartCheckout(ctx, domain.IdentityFromContext(ctx))
	if err != nil {
		if m := telemetry.Business; m != nil {
			m.CheckoutFailed.WithLabelValues(domain.ErrorCode(err)).Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if m := telemetry.Business; m != nil {
		m.CheckoutStarted.Inc()
	}

	h.logger.Info("checkout started", slog.String("session_id", redirect.SessionID))

	respondJSON(w, http.StatusOK, checkoutPayload{
		URL:       redirect.URL,
		SessionID: redirect.SessionID,
	})
}
