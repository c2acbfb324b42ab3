package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound means the provider has no checkout session
	// with the given ID.
	ErrSessionNotFound = errors.New("billing: checkout session not found")

	// ErrInvalidWebhookSignature means the payload failed signature
	// verification and must not be trusted.
	ErrInvalidWebhookSignature = errors.New("billing: invalid webhook signature")

	// ErrAmountTooSmall means the total is below the provider minimum
	// charge ($0.50 USD for Stripe).
	ErrAmountTooSmall = errors.New("billing: amount below provider minimum")
)

// StripeError carries the provider-side detail of a failed API call.
type StripeError struct {
	Message       string
	Code          string // Stripe error code, e.g. "card_declined"
	DeclineCode   string // issuer decline reason, when the card was declined
	RequestID     string // provider request ID, for support tickets
	OriginalError error
}

func (e *StripeError) Error() string {
	if e.Code == "" {
		return "stripe: " + e.Message
	}
	return fmt.Sprintf("stripe: %s (code: %s)", e.Message, e.Code)
}

func (e *StripeError) Unwrap() error {
	return e.OriginalError
}

// IsDeclined reports whether the failure was a card decline.
func (e *StripeError) IsDeclined() bool {
	return e.Code == "card_declined" || e.DeclineCode != ""
}

// IsTemporary reports whether retrying the call may succeed.
func (e *StripeError) IsTemporary() bool {
	return e.Code == "rate_limit" || e.Code == "api_connection_error"
}
