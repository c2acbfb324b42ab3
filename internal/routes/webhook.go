package routes

import (
	"github.com/stridewear/stride/internal/router"
)

// RegisterWebhookRoutes registers provider callback endpoints. No
// session middleware here: the caller is Stripe, not a shopper, and
// the handler authenticates the payload by its signature.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/stripe", deps.StripeHandler)
}
