package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/billing"
	"github.com/stridewear/stride/internal/domain"
)

// mockCartService implements domain.CartService for checkout tests.
type mockCartService struct {
	summary    *domain.CartSummary
	summaryErr error
}

func (m *mockCartService) GetOrCreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	return nil, errMockNotImplemented
}

func (m *mockCartService) GetCartSummary(ctx context.Context, owner domain.CartOwner) (*domain.CartSummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

func (m *mockCartService) AddItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	return nil, errMockNotImplemented
}

func (m *mockCartService) SetItemQuantity(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	return nil, errMockNotImplemented
}

func (m *mockCartService) RemoveItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID) (*domain.CartSummary, error) {
	return nil, errMockNotImplemented
}

func (m *mockCartService) ClearCart(ctx context.Context, owner domain.CartOwner) error {
	return errMockNotImplemented
}

func (m *mockCartService) MergeGuestCart(ctx context.Context, guestSessionID, userID uuid.UUID) error {
	return errMockNotImplemented
}

func makeCheckoutSummary(cartID uuid.UUID, items ...domain.CartItem) *domain.CartSummary {
	summary := &domain.CartSummary{
		Cart:  domain.Cart{ID: testPgUUID(cartID)},
		Items: items,
	}
	for _, item := range items {
		summary.Subtotal += item.LineSubtotal
		summary.ItemCount += item.Quantity
	}
	return summary
}

func TestStartCheckout_GuestCart(t *testing.T) {
	guestSessionID := uuid.New()
	cartID := uuid.New()
	identity := domain.GuestIdentity(guestSessionID)

	carts := &mockCartService{
		summary: makeCheckoutSummary(cartID,
			makeTestCartItem(uuid.New(), 2, 8900),
			makeTestCartItem(uuid.New(), 1, 12500),
		),
	}

	var captured billing.CreateCheckoutSessionParams
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			captured = params
			return &billing.CheckoutSession{
				ID:  "cs_test_123",
				URL: "https://checkout.stripe.com/c/pay/cs_test_123",
			}, nil
		},
	}

	svc := NewCheckoutService(carts, &mockUserStore{}, provider, "https://shop.stridewear.com/", testLogger())

	redirect, err := svc.StartCheckout(context.Background(), identity)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if redirect.SessionID != "cs_test_123" {
		t.Errorf("Expected session ID cs_test_123, got %s", redirect.SessionID)
	}
	if redirect.URL == "" {
		t.Error("Expected redirect URL, got empty string")
	}

	if len(captured.LineItems) != 2 {
		t.Fatalf("Expected 2 line items, got %d", len(captured.LineItems))
	}
	if captured.LineItems[0].UnitAmountCents != 8900 || captured.LineItems[0].Quantity != 2 {
		t.Errorf("Unexpected first line item: %+v", captured.LineItems[0])
	}
	if want := "https://shop.stridewear.com/images/cascade-trail-runner.jpg"; captured.LineItems[0].ImageURL != want {
		t.Errorf("Expected absolute image URL %q, got %q", want, captured.LineItems[0].ImageURL)
	}
	if captured.Currency != "usd" {
		t.Errorf("Expected currency usd, got %s", captured.Currency)
	}
	if want := "https://shop.stridewear.com/checkout/success?session_id={CHECKOUT_SESSION_ID}"; captured.SuccessURL != want {
		t.Errorf("Expected success URL %q, got %q", want, captured.SuccessURL)
	}
	if want := "https://shop.stridewear.com/cart"; captured.CancelURL != want {
		t.Errorf("Expected cancel URL %q, got %q", want, captured.CancelURL)
	}
	if !captured.CollectBillingAddress {
		t.Error("Expected billing address collection to be required")
	}
	if len(captured.ShippingCountries) != 3 {
		t.Errorf("Expected 3 shipping countries, got %v", captured.ShippingCountries)
	}
	if captured.Metadata["cartId"] != cartID.String() {
		t.Errorf("Expected cartId metadata %s, got %s", cartID, captured.Metadata["cartId"])
	}
	if captured.Metadata["userId"] != "" {
		t.Errorf("Expected empty userId metadata for guest, got %q", captured.Metadata["userId"])
	}
	if captured.CustomerEmail != "" {
		t.Errorf("Expected no customer email for guest, got %q", captured.CustomerEmail)
	}
}

func TestStartCheckout_UserCartCarriesIdentity(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	identity := domain.UserIdentity(userID)

	carts := &mockCartService{
		summary: makeCheckoutSummary(cartID, makeTestCartItem(uuid.New(), 1, 8900)),
	}
	users := &mockUserStore{
		getUserByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			if id != userID {
				t.Errorf("Expected lookup of user %s, got %s", userID, id)
			}
			return &domain.User{ID: testPgUUID(userID), Email: "runner@example.com"}, nil
		},
	}

	var captured billing.CreateCheckoutSessionParams
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			captured = params
			return &billing.CheckoutSession{ID: "cs_test_456", URL: "https://checkout.example/cs_test_456"}, nil
		},
	}

	svc := NewCheckoutService(carts, users, provider, "https://shop.stridewear.com", testLogger())

	if _, err := svc.StartCheckout(context.Background(), identity); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if captured.Metadata["userId"] != userID.String() {
		t.Errorf("Expected userId metadata %s, got %q", userID, captured.Metadata["userId"])
	}
	if captured.CustomerEmail != "runner@example.com" {
		t.Errorf("Expected customer email runner@example.com, got %q", captured.CustomerEmail)
	}
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	carts := &mockCartService{
		summary: makeCheckoutSummary(uuid.New()),
	}
	svc := NewCheckoutService(carts, &mockUserStore{}, &billing.MockProvider{}, "https://shop.stridewear.com", testLogger())

	_, err := svc.StartCheckout(context.Background(), domain.GuestIdentity(uuid.New()))
	if !errors.Is(err, ErrCartEmpty) {
		t.Errorf("Expected ErrCartEmpty, got %v", err)
	}
}

func TestStartCheckout_AbsoluteImageURLPassthrough(t *testing.T) {
	cartID := uuid.New()
	item := makeTestCartItem(uuid.New(), 1, 8900)
	item.ImageURL = "https://cdn.stridewear.com/cascade.jpg"

	carts := &mockCartService{summary: makeCheckoutSummary(cartID, item)}

	var captured billing.CreateCheckoutSessionParams
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			captured = params
			return &billing.CheckoutSession{ID: "cs_test_789", URL: "https://checkout.example/cs_test_789"}, nil
		},
	}
	svc := NewCheckoutService(carts, &mockUserStore{}, provider, "https://shop.stridewear.com", testLogger())

	if _, err := svc.StartCheckout(context.Background(), domain.GuestIdentity(uuid.New())); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if captured.LineItems[0].ImageURL != "https://cdn.stridewear.com/cascade.jpg" {
		t.Errorf("Expected absolute URL untouched, got %q", captured.LineItems[0].ImageURL)
	}
}

func TestStartCheckout_BelowMinimumCharge(t *testing.T) {
	providerCalled := false
	carts := &mockCartService{
		summary: makeCheckoutSummary(uuid.New(), makeTestCartItem(uuid.New(), 1, 25)),
	}
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			providerCalled = true
			return nil, nil
		},
	}
	svc := NewCheckoutService(carts, &mockUserStore{}, provider, "https://shop.stridewear.com", testLogger())

	_, err := svc.StartCheckout(context.Background(), domain.GuestIdentity(uuid.New()))
	if !errors.Is(err, billing.ErrAmountTooSmall) {
		t.Errorf("Expected ErrAmountTooSmall, got %v", err)
	}
	if !domain.IsCode(err, domain.EINVALID) {
		t.Errorf("Expected EINVALID error code, got %q", domain.ErrorCode(err))
	}
	if providerCalled {
		t.Error("Expected no provider call for a sub-minimum total")
	}
}

func TestStartCheckout_AnonymousIdentity(t *testing.T) {
	svc := NewCheckoutService(&mockCartService{}, &mockUserStore{}, &billing.MockProvider{}, "https://shop.stridewear.com", testLogger())

	_, err := svc.StartCheckout(context.Background(), domain.AnonymousIdentity())
	if !errors.Is(err, ErrNoCartOwner) {
		t.Errorf("Expected ErrNoCartOwner, got %v", err)
	}
}

func TestStartCheckout_ProviderFailure(t *testing.T) {
	carts := &mockCartService{
		summary: makeCheckoutSummary(uuid.New(), makeTestCartItem(uuid.New(), 1, 8900)),
	}
	provider := &billing.MockProvider{
		CreateCheckoutSessionFunc: func(ctx context.Context, params billing.CreateCheckoutSessionParams) (*billing.CheckoutSession, error) {
			return nil, errors.New("stripe unavailable")
		},
	}
	svc := NewCheckoutService(carts, &mockUserStore{}, provider, "https://shop.stridewear.com", testLogger())

	_, err := svc.StartCheckout(context.Background(), domain.GuestIdentity(uuid.New()))
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !domain.IsCode(err, domain.EPAYMENT) {
		t.Errorf("Expected EPAYMENT error code, got %q", domain.ErrorCode(err))
	}
}
