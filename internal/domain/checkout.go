package domain

import (
	"context"
)

// CheckoutService initiates hosted checkout sessions with the payment
// provider. No order or payment rows are written at initiation; they
// appear only when the finished session is materialized.
type CheckoutService interface {
	// StartCheckout builds a hosted checkout session for the shopper's
	// cart and returns the redirect. An empty or missing cart returns
	// ErrCartEmpty; an anonymous identity returns ErrNoCartOwner.
	StartCheckout(ctx context.Context, identity Identity) (*CheckoutRedirect, error)
}

// CheckoutRedirect is the result of initiating checkout: where to send
// the shopper, and the provider session backing it.
type CheckoutRedirect struct {
	SessionID string
	URL       string
}
