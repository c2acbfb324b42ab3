package billing

import (
	"errors"
	"strings"
)

// StripeConfig configures the Stripe provider.
type StripeConfig struct {
	// APIKey is the secret key (sk_test_... or sk_live_...).
	APIKey string

	// WebhookSecret (whsec_...) verifies webhook signatures.
	WebhookSecret string

	// MaxRetries for transient API failures; 0 uses the SDK default.
	MaxRetries int

	// TimeoutSeconds bounds each API call; 0 uses the SDK default.
	TimeoutSeconds int
}

// Validate reports missing required settings before any API call is
// attempted.
func (c *StripeConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("stripe: API key is required")
	}
	if c.WebhookSecret == "" {
		return errors.New("stripe: webhook secret is required")
	}
	return nil
}

// IsTestMode reports whether the key targets Stripe test mode.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.APIKey, "sk_test_")
}
