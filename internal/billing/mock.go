package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a mock billing provider for testing.
// Simulates checkout flows without calling the Stripe API.
type MockProvider struct {
	// CreateCheckoutSessionFunc allows customizing session creation behavior
	CreateCheckoutSessionFunc func(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error)

	// GetCheckoutSessionFunc allows customizing session retrieval behavior
	GetCheckoutSessionFunc func(ctx context.Context, sessionID string) (*CheckoutSession, error)

	// VerifyWebhookSignatureFunc allows customizing webhook verification behavior
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// Sessions stores created sessions for retrieval
	Sessions map[string]*CheckoutSession

	// CallLog tracks method calls for test assertions
	CallLog []string
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock billing provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Sessions: make(map[string]*CheckoutSession),
		CallLog:  []string{},
	}
}

// CreateCheckoutSession creates a mock checkout session.
func (m *MockProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreateCheckoutSession(%d items)", len(params.LineItems)))

	if m.CreateCheckoutSessionFunc != nil {
		return m.CreateCheckoutSessionFunc(ctx, params)
	}

	var total int32
	for _, item := range params.LineItems {
		total += item.UnitAmountCents * item.Quantity
	}

	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	// Default mock behavior: open, unpaid session
	session := &CheckoutSession{
		ID:                "cs_test_" + uuid.New().String(),
		Status:            "open",
		PaymentStatus:     PaymentStatusUnpaid,
		ClientReferenceID: params.ClientReferenceID,
		AmountTotalCents:  total,
		Currency:          currency,
		Metadata:          params.Metadata,
		LineItems:         params.LineItems,
		CreatedAt:         time.Now(),
	}
	session.URL = "https://checkout.stripe.example/pay/" + session.ID

	m.Sessions[session.ID] = session
	return session, nil
}

// GetCheckoutSession retrieves a mock checkout session.
func (m *MockProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetCheckoutSession(%s)", sessionID))

	if m.GetCheckoutSessionFunc != nil {
		return m.GetCheckoutSessionFunc(ctx, sessionID)
	}

	session, exists := m.Sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// VerifyWebhookSignature verifies a mock webhook signature.
// Default behavior: any non-empty signature is valid.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}

	if signature == "" {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// CompletePayment marks a stored session as paid with a payment intent,
// simulating the shopper finishing hosted checkout.
func (m *MockProvider) CompletePayment(sessionID string, details *CustomerDetails, shipping *SessionAddress) (*CheckoutSession, bool) {
	session, exists := m.Sessions[sessionID]
	if !exists {
		return nil, false
	}
	session.Status = "complete"
	session.PaymentStatus = PaymentStatusPaid
	session.PaymentIntentID = "pi_" + uuid.New().String()
	session.CustomerDetails = details
	session.ShippingDetails = shipping
	return session, true
}
