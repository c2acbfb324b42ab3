package billing

import (
	"context"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeProvider implements Provider using Stripe Checkout.
type StripeProvider struct {
	config StripeConfig
}

// Compile-time check that StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)

// NewStripeProvider creates a new Stripe billing provider and installs
// the API key into the Stripe SDK.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	stripe.Key = config.APIKey

	return &StripeProvider{config: config}, nil
}

// CreateCheckoutSession creates a hosted Stripe Checkout session in
// payment mode.
func (s *StripeProvider) CreateCheckoutSession(ctx context.Context, params CreateCheckoutSessionParams) (*CheckoutSession, error) {
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, len(params.LineItems))
	for i, item := range params.LineItems {
		productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Description != "" {
			productData.Description = stripe.String(item.Description)
		}
		if item.ImageURL != "" {
			productData.Images = stripe.StringSlice([]string{item.ImageURL})
		}
		lineItems[i] = &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(currency),
				ProductData: productData,
				UnitAmount:  stripe.Int64(int64(item.UnitAmountCents)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		}
	}

	checkoutParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	checkoutParams.Context = ctx

	if params.ClientReferenceID != "" {
		checkoutParams.ClientReferenceID = stripe.String(params.ClientReferenceID)
	}
	if params.CustomerEmail != "" {
		checkoutParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}
	if params.CollectBillingAddress {
		checkoutParams.BillingAddressCollection = stripe.String(
			string(stripe.CheckoutSessionBillingAddressCollectionRequired))
	}
	if len(params.ShippingCountries) > 0 {
		checkoutParams.ShippingAddressCollection = &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(params.ShippingCountries),
		}
	}
	for k, v := range params.Metadata {
		checkoutParams.AddMetadata(k, v)
	}

	session, err := checkoutsession.New(checkoutParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return fromStripeSession(session), nil
}

// GetCheckoutSession retrieves a session with payment intent and line
// items expanded.
func (s *StripeProvider) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")
	params.AddExpand("line_items")

	session, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, ErrSessionNotFound
		}
		return nil, wrapStripeError(err)
	}

	return fromStripeSession(session), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if _, err := webhook.ConstructEvent(payload, signature, secret); err != nil {
		return ErrInvalidWebhookSignature
	}
	return nil
}

// fromStripeSession converts the SDK session into the provider-neutral
// representation.
func fromStripeSession(session *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:                session.ID,
		URL:               session.URL,
		Status:            string(session.Status),
		PaymentStatus:     string(session.PaymentStatus),
		ClientReferenceID: session.ClientReferenceID,
		AmountTotalCents:  int32(session.AmountTotal),
		Currency:          string(session.Currency),
		Metadata:          session.Metadata,
		CreatedAt:         time.Unix(session.Created, 0),
	}

	if session.PaymentIntent != nil {
		out.PaymentIntentID = session.PaymentIntent.ID
	}

	if cd := session.CustomerDetails; cd != nil {
		out.CustomerDetails = &CustomerDetails{
			Email:   cd.Email,
			Name:    cd.Name,
			Address: fromStripeAddress(cd.Address, cd.Name),
		}
	}

	if ci := session.CollectedInformation; ci != nil && ci.ShippingDetails != nil {
		out.ShippingDetails = fromStripeAddress(ci.ShippingDetails.Address, ci.ShippingDetails.Name)
	}

	if session.LineItems != nil {
		for _, li := range session.LineItems.Data {
			item := LineItem{
				Name:     li.Description,
				Quantity: int32(li.Quantity),
			}
			if li.Price != nil {
				item.UnitAmountCents = int32(li.Price.UnitAmount)
			}
			out.LineItems = append(out.LineItems, item)
		}
	}

	return out
}

func fromStripeAddress(addr *stripe.Address, name string) *SessionAddress {
	if addr == nil {
		return nil
	}
	return &SessionAddress{
		Name:       name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

// wrapStripeError converts SDK errors into StripeError with the fields
// tests and logs care about.
func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	return &StripeError{
		Message:       stripeErr.Msg,
		Code:          string(stripeErr.Code),
		DeclineCode:   string(stripeErr.DeclineCode),
		RequestID:     stripeErr.RequestID,
		OriginalError: err,
	}
}
