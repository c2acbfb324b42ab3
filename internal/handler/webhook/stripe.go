package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stridewear/stride/internal/billing"
	"github.com/stridewear/stride/internal/domain"
	"github.com/stridewear/stride/internal/handler"
	"github.com/stridewear/stride/internal/telemetry"
)

// StripeHandler handles Stripe webhook events
type StripeHandler struct {
	provider billing.Provider
	orders   domain.OrderService
	config   StripeWebhookConfig
}

// StripeWebhookConfig contains configuration for Stripe webhook handling
type StripeWebhookConfig struct {
	// WebhookSecret is the webhook signing secret from Stripe dashboard
	WebhookSecret string
}

// NewStripeHandler creates a new Stripe webhook handler
func NewStripeHandler(provider billing.Provider, orders domain.OrderService, config StripeWebhookConfig) *StripeHandler {
	return &StripeHandler{
		provider: provider,
		orders:   orders,
		config:   config,
	}
}

// HandleWebhook processes incoming Stripe webhook events.
//
// Stripe CLI testing:
//
//	stripe listen --forward-to localhost:3000/webhooks/stripe
//	stripe trigger checkout.session.completed
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Method not allowed"))
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[WEBHOOK] Error reading payload: %v", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Error reading request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		log.Printf("[WEBHOOK] Missing Stripe-Signature header")
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Missing signature"))
		return
	}

	if err := h.provider.VerifyWebhookSignature(payload, signature, h.config.WebhookSecret); err != nil {
		log.Printf("[WEBHOOK] Signature verification failed: %v", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid signature"))
		return
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Printf("[WEBHOOK] Error parsing webhook JSON: %v", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "", "Invalid JSON"))
		return
	}

	log.Printf("[WEBHOOK] Received Stripe event: %s (ID: %s)", event.Type, event.ID)

	if m := telemetry.Business; m != nil {
		m.WebhookReceived.WithLabelValues(string(event.Type)).Inc()
	}

	switch event.Type {
	case "checkout.session.completed":
		if err := h.handleCheckoutSessionCompleted(r, event); err != nil {
			log.Printf("[WEBHOOK] CRITICAL: Failed to process event %s: %v", event.ID, err)
			if m := telemetry.Business; m != nil {
				m.WebhookFailed.WithLabelValues(string(event.Type)).Inc()
			}
			handler.ErrorResponse(w, r, err)
			return
		}

	case "checkout.session.expired":
		// No order to clean up: unpaid sessions never materialize
		log.Printf("[WEBHOOK] Checkout session expired: %s", event.ID)

	default:
		log.Printf("[WEBHOOK] Unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"received": true}`))
}

// handleCheckoutSessionCompleted materializes an order from the paid
// session. A materialization failure propagates as a non-2xx response
// so Stripe redelivers the event; the success-page poll is only a
// fallback and cannot be counted on to run.
func (h *StripeHandler) handleCheckoutSessionCompleted(r *http.Request, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return domain.WrapError(err, domain.EINVALID, "webhook.checkout_completed", "Malformed checkout session payload")
	}

	log.Printf("[WEBHOOK] Checkout session completed: %s (payment_status: %s)",
		session.ID, session.PaymentStatus)

	var userID *uuid.UUID
	if raw := session.Metadata["userId"]; raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			userID = &id
		} else {
			log.Printf("[WEBHOOK] Malformed userId metadata on session %s: %q", session.ID, raw)
		}
	}

	detail, err := h.orders.CreateOrderFromSession(r.Context(), session.ID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentAlreadyProcessed) {
			log.Printf("[WEBHOOK] Order already exists for session %s (idempotent retry)", session.ID)
			return nil
		}
		return fmt.Errorf("failed to create order from session %s: %w", session.ID, err)
	}
	if detail == nil {
		// completed event for a session the provider still reports
		// unpaid; the poll path will pick it up
		log.Printf("[WEBHOOK] Session %s not yet paid, skipping materialization", session.ID)
		return nil
	}

	if m := telemetry.Business; m != nil {
		m.WebhookProcessed.WithLabelValues(string(event.Type)).Inc()
		m.OrdersCreated.WithLabelValues("webhook").Inc()
		m.OrderValueCents.Observe(float64(detail.Order.TotalCents))
	}

	log.Printf("[WEBHOOK] Order created: %s (session: %s, total: %d)",
		uuid.UUID(detail.Order.ID.Bytes), session.ID, detail.Order.TotalCents)
	return nil
}
