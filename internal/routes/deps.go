// Package routes wires handlers onto the router. Registration is split
// by surface so each can carry its own middleware.
package routes

import (
	"net/http"

	"github.com/stridewear/stride/internal/handler/api"
)

// APIDeps contains dependencies for the JSON storefront API routes.
type APIDeps struct {
	CartHandler     *api.CartHandler
	CheckoutHandler *api.CheckoutHandler
	OrdersHandler   *api.OrdersHandler
	AuthHandler     *api.AuthHandler
}

// WebhookDeps contains dependencies for webhook routes.
type WebhookDeps struct {
	StripeHandler http.HandlerFunc
}
