// Package billing abstracts the payment provider behind a narrow
// interface so services and handlers never import the Stripe SDK
// directly, and tests can run against a mock.
package billing

import (
	"context"
	"time"
)

// Checkout session payment states as reported by the provider.
const (
	PaymentStatusPaid              = "paid"
	PaymentStatusUnpaid            = "unpaid"
	PaymentStatusNoPaymentRequired = "no_payment_required"
)

// Provider defines the interface for hosted-checkout payment processing.
// Implementations can use Stripe, PayPal, Square, etc.
type Provider interface {
	// CreateCheckoutSession creates a hosted checkout session for a
	// one-time payment and returns its redirect URL.
	CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSession retrieves a session with its payment intent and
	// line items expanded. Used by order materialization to verify the
	// payment outcome.
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignature verifies that a webhook request is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// CreateCheckoutSessionParams contains parameters for creating a hosted
// checkout session.
type CreateCheckoutSessionParams struct {
	// LineItems are the cart lines to charge for.
	LineItems []LineItem

	// Currency code (ISO 4217) - e.g., "usd"
	Currency string

	// SuccessURL is where the shopper lands after paying. Providers
	// substitute the session ID into a {CHECKOUT_SESSION_ID} placeholder.
	SuccessURL string

	// CancelURL is where the shopper lands after abandoning checkout.
	CancelURL string

	// ClientReferenceID ties the session back to a local entity (cart ID).
	ClientReferenceID string

	// CustomerEmail prefills the shopper's email when known.
	CustomerEmail string

	// Metadata for reconciliation (cart ID, user ID).
	Metadata map[string]string

	// CollectBillingAddress requires a billing address at payment.
	CollectBillingAddress bool

	// ShippingCountries is the allow-list for shipping address
	// collection. Empty disables shipping collection.
	ShippingCountries []string
}

// LineItem is one charged line of a checkout session. ImageURL must be
// absolute: the hosted payment page fetches it from its own origin.
type LineItem struct {
	Name            string
	Description     string
	ImageURL        string
	UnitAmountCents int32
	Quantity        int32
}

// CheckoutSession represents a provider checkout session.
type CheckoutSession struct {
	ID                string
	URL               string
	Status            string
	PaymentStatus     string
	PaymentIntentID   string
	ClientReferenceID string
	AmountTotalCents  int32
	Currency          string
	Metadata          map[string]string
	CustomerDetails   *CustomerDetails
	ShippingDetails   *SessionAddress
	LineItems         []LineItem
	CreatedAt         time.Time
}

// Paid reports whether the session's payment completed.
func (s *CheckoutSession) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

// CustomerDetails carries what the provider collected about the payer.
type CustomerDetails struct {
	Email   string
	Name    string
	Address *SessionAddress
}

// SessionAddress is an address as collected during checkout. Fields the
// shopper did not provide are empty strings.
type SessionAddress struct {
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}
