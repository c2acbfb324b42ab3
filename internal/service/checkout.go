package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stridewear/stride/internal/billing"
	"github.com/stridewear/stride/internal/domain"
)

// checkoutShippingCountries is the set of countries the hosted checkout
// accepts shipping addresses for.
var checkoutShippingCountries = []string{"US", "CA", "IN"}

// metadataUserIDNone marks a guest checkout in session metadata, where
// Stripe drops empty-string values.
const metadataUserIDNone = ""

// minChargeCents is the smallest USD total the card networks accept.
// Stripe rejects charges below it, so fail before issuing the call.
const minChargeCents = 50

// checkoutService implements domain.CheckoutService. It turns the
// shopper's cart into a hosted checkout session at the payment
// provider; the order itself is materialized later from the completed
// session.
type checkoutService struct {
	carts    domain.CartService
	users    domain.UserStore
	provider billing.Provider
	baseURL  string
	logger   *slog.Logger
}

// NewCheckoutService creates a new CheckoutService instance. baseURL is
// the public origin used to build success and cancel URLs.
func NewCheckoutService(carts domain.CartService, users domain.UserStore, provider billing.Provider, baseURL string, logger *slog.Logger) domain.CheckoutService {
	return &checkoutService{
		carts:    carts,
		users:    users,
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// StartCheckout builds a hosted checkout session for the identity's
// cart. The cart is re-read and re-priced here; whatever the shopper's
// client displayed is not trusted.
func (s *checkoutService) StartCheckout(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
	owner, ok := domain.CartOwnerFromIdentity(identity)
	if !ok {
		return nil, ErrNoCartOwner
	}

	summary, err := s.carts.GetCartSummary(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}
	if len(summary.Items) == 0 {
		return nil, ErrCartEmpty
	}

	if summary.Subtotal < minChargeCents {
		return nil, domain.WrapError(billing.ErrAmountTooSmall, domain.EINVALID, "checkout.start",
			"Order total is below the minimum chargeable amount")
	}

	lineItems := make([]billing.LineItem, 0, len(summary.Items))
	for _, item := range summary.Items {
		lineItems = append(lineItems, billing.LineItem{
			Name:            item.ProductName,
			Description:     item.VariantName,
			ImageURL:        s.absoluteImageURL(item.ImageURL),
			UnitAmountCents: item.UnitPriceCents,
			Quantity:        item.Quantity,
		})
	}

	cartID := uid(summary.Cart.ID)
	metadata := map[string]string{
		"cartId": cartID.String(),
		"userId": metadataUserIDNone,
	}

	var customerEmail string
	if userID, ok := identity.UserID(); ok {
		metadata["userId"] = userID.String()
		user, err := s.users.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user for checkout: %w", err)
		}
		customerEmail = user.Email
	}

	session, err := s.provider.CreateCheckoutSession(ctx, billing.CreateCheckoutSessionParams{
		LineItems:             lineItems,
		Currency:              "usd",
		SuccessURL:            s.baseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:             s.baseURL + "/cart",
		ClientReferenceID:     cartID.String(),
		CustomerEmail:         customerEmail,
		Metadata:              metadata,
		CollectBillingAddress: true,
		ShippingCountries:     checkoutShippingCountries,
	})
	if err != nil {
		s.logger.Error("failed to create checkout session",
			slog.String("cart_id", cartID.String()),
			slog.String("error", err.Error()))
		return nil, domain.WrapError(err, domain.EPAYMENT, "checkout.start", "Failed to start checkout")
	}

	s.logger.Info("created checkout session",
		slog.String("session_id", session.ID),
		slog.String("cart_id", cartID.String()),
		slog.Int("line_count", len(lineItems)))

	return &domain.CheckoutRedirect{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// absoluteImageURL resolves a stored image path against the public
// origin. Already-absolute URLs pass through untouched.
func (s *checkoutService) absoluteImageURL(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		return imageURL
	}
	if !strings.HasPrefix(imageURL, "/") {
		imageURL = "/" + imageURL
	}
	return s.baseURL + imageURL
}
