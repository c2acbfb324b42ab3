package api

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stridewear/stride/internal/domain"
)

var errMockNotImplemented = errors.New("not implemented in mock")

// mockCartService implements domain.CartService with overridable funcs.
type mockCartService struct {
	getOrCreateCartFunc func(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	getCartSummaryFunc  func(ctx context.Context, owner domain.CartOwner) (*domain.CartSummary, error)
	addItemFunc         func(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error)
	setItemQuantityFunc func(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error)
	removeItemFunc      func(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID) (*domain.CartSummary, error)
	clearCartFunc       func(ctx context.Context, owner domain.CartOwner) error
	mergeGuestCartFunc  func(ctx context.Context, guestSessionID, userID uuid.UUID) error
}

func (m *mockCartService) GetOrCreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if m.getOrCreateCartFunc != nil {
		return m.getOrCreateCartFunc(ctx, owner)
	}
	return nil, errMockNotImplemented
}

func (m *mockCartService) GetCartSummary(ctx context.Context, owner domain.CartOwner) (*domain.CartSummary, error) {
	if m.getCartSummaryFunc != nil {
		return m.getCartSummaryFunc(ctx, owner)
	}
	return nil, errMockNotImplemented
}

func (m *mockCartService) AddItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	if m.addItemFunc != nil {
		return m.addItemFunc(ctx, owner, variantID, quantity)
	}
	return nil, errMockNotImplemented
}

func (m *mockCartService) SetItemQuantity(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	if m.setItemQuantityFunc != nil {
		return m.setItemQuantityFunc(ctx, owner, variantID, quantity)
	}
	return nil, errMockNotImplemented
}

func (m *mockCartService) RemoveItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID) (*domain.CartSummary, error) {
	if m.removeItemFunc != nil {
		return m.removeItemFunc(ctx, owner, variantID)
	}
	return nil, errMockNotImplemented
}

func (m *mockCartService) ClearCart(ctx context.Context, owner domain.CartOwner) error {
	if m.clearCartFunc != nil {
		return m.clearCartFunc(ctx, owner)
	}
	return errMockNotImplemented
}

func (m *mockCartService) MergeGuestCart(ctx context.Context, guestSessionID, userID uuid.UUID) error {
	if m.mergeGuestCartFunc != nil {
		return m.mergeGuestCartFunc(ctx, guestSessionID, userID)
	}
	return errMockNotImplemented
}

// mockSessionResolver implements domain.SessionResolver.
type mockSessionResolver struct {
	resolveFunc     func(ctx context.Context, userToken, guestToken string) (domain.Identity, error)
	ensureGuestFunc func(ctx context.Context, guestToken string) (*domain.GuestSession, bool, error)
}

func (m *mockSessionResolver) Resolve(ctx context.Context, userToken, guestToken string) (domain.Identity, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, userToken, guestToken)
	}
	return domain.AnonymousIdentity(), nil
}

func (m *mockSessionResolver) EnsureGuest(ctx context.Context, guestToken string) (*domain.GuestSession, bool, error) {
	if m.ensureGuestFunc != nil {
		return m.ensureGuestFunc(ctx, guestToken)
	}
	return nil, false, errMockNotImplemented
}

// mockCheckoutService implements domain.CheckoutService.
type mockCheckoutService struct {
	startCheckoutFunc func(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error)
}

func (m *mockCheckoutService) StartCheckout(ctx context.Context, identity domain.Identity) (*domain.CheckoutRedirect, error) {
	if m.startCheckoutFunc != nil {
		return m.startCheckoutFunc(ctx, identity)
	}
	return nil, errMockNotImplemented
}

// mockAccountService implements domain.AccountService.
type mockAccountService struct {
	registerFunc           func(ctx context.Context, params domain.RegisterParams) (*domain.User, string, error)
	loginFunc              func(ctx context.Context, params domain.LoginParams) (*domain.User, string, error)
	logoutFunc             func(ctx context.Context, token string) error
	userBySessionTokenFunc func(ctx context.Context, token string) (*domain.User, error)
}

func (m *mockAccountService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, string, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, params)
	}
	return nil, "", errMockNotImplemented
}

func (m *mockAccountService) Login(ctx context.Context, params domain.LoginParams) (*domain.User, string, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, params)
	}
	return nil, "", errMockNotImplemented
}

func (m *mockAccountService) Logout(ctx context.Context, token string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, token)
	}
	return errMockNotImplemented
}

func (m *mockAccountService) UserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if m.userBySessionTokenFunc != nil {
		return m.userBySessionTokenFunc(ctx, token)
	}
	return nil, errMockNotImplemented
}

// mockOrderService implements domain.OrderService.
type mockOrderService struct {
	createOrderFromSessionFunc func(ctx context.Context, checkoutSessionID string, userID *uuid.UUID) (*domain.OrderDetail, error)
	findOrderFunc              func(ctx context.Context, identifier string) (*domain.OrderDetail, error)
}

func (m *mockOrderService) CreateOrderFromSession(ctx context.Context, checkoutSessionID string, userID *uuid.UUID) (*domain.OrderDetail, error) {
	if m.createOrderFromSessionFunc != nil {
		return m.createOrderFromSessionFunc(ctx, checkoutSessionID, userID)
	}
	return nil, errMockNotImplemented
}

func (m *mockOrderService) FindOrder(ctx context.Context, identifier string) (*domain.OrderDetail, error) {
	if m.findOrderFunc != nil {
		return m.findOrderFunc(ctx, identifier)
	}
	return nil, errMockNotImplemented
}

// Fixtures

func testPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func makeTestSummary(variantID uuid.UUID, quantity, unitPrice int32) *domain.CartSummary {
	return &domain.CartSummary{
		Cart: domain.Cart{ID: testPgUUID(uuid.New())},
		Items: []domain.CartItem{
			{
				ID:             testPgUUID(uuid.New()),
				VariantID:      testPgUUID(variantID),
				ProductName:    "Cascade Trail Runner",
				VariantName:    "Graphite / US 10",
				SKU:            "CTR-GRA-10",
				Quantity:       quantity,
				UnitPriceCents: unitPrice,
				LineSubtotal:   unitPrice * quantity,
			},
		},
		Subtotal:  unitPrice * quantity,
		ItemCount: quantity,
	}
}

func makeTestGuestSession(id, token uuid.UUID) *domain.GuestSession {
	return &domain.GuestSession{
		ID:        testPgUUID(id),
		Token:     testPgUUID(token),
		ExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(time.Hour), Valid: true},
	}
}

func makeTestOrderDetail(total int32) *domain.OrderDetail {
	return &domain.OrderDetail{
		Order: domain.Order{
			ID:         testPgUUID(uuid.New()),
			Status:     domain.OrderStatusPaid,
			TotalCents: total,
			CreatedAt:  pgtype.Timestamptz{Time: time.Now(), Valid: true},
		},
		Items: []domain.OrderItem{
			{
				ProductName:          "Cascade Trail Runner",
				VariantName:          "Graphite / US 10",
				SKU:                  "CTR-GRA-10",
				ImageURL:             "/images/cascade-trail-runner.jpg",
				Quantity:             2,
				PriceAtPurchaseCents: total / 2,
			},
		},
		ShippingAddress: domain.Address{
			Type:       domain.AddressTypeShipping,
			Name:       "Jordan Miles",
			Line1:      "418 Pine St",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
			Country:    "US",
		},
		BillingAddress: domain.Address{
			Type:       domain.AddressTypeBilling,
			Name:       "Jordan Miles",
			Line1:      "418 Pine St",
			City:       "Seattle",
			State:      "WA",
			PostalCode: "98101",
			Country:    "US",
		},
		Payment: domain.Payment{
			Method:        "stripe",
			Status:        domain.PaymentStatusCompleted,
			AmountCents:   total,
			TransactionID: "pi_test_xyz789",
		},
	}
}
