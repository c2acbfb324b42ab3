package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stridewear/stride/internal/domain"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockCartStore implements domain.CartStore for testing. Unset funcs
// return a "not implemented" error so tests fail loudly on unexpected
// calls.
type mockCartStore struct {
	getCartByOwnerFunc  func(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	createCartFunc      func(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	listItemsFunc       func(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error)
	upsertItemFunc      func(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error
	setItemQuantityFunc func(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error
	deleteItemFunc      func(ctx context.Context, cartID, variantID uuid.UUID) error
	deleteItemsFunc     func(ctx context.Context, cartID uuid.UUID) error
	mergeCartsFunc      func(ctx context.Context, guestCartID, userCartID uuid.UUID, guestSessionID uuid.UUID) error
	deleteCartFunc      func(ctx context.Context, cartID uuid.UUID) error
}

var errMockNotImplemented = errors.New("not implemented in mock")

func (m *mockCartStore) GetCartByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if m.getCartByOwnerFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getCartByOwnerFunc(ctx, owner)
}

func (m *mockCartStore) CreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if m.createCartFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.createCartFunc(ctx, owner)
}

func (m *mockCartStore) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	if m.listItemsFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.listItemsFunc(ctx, cartID)
}

func (m *mockCartStore) UpsertItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error {
	if m.upsertItemFunc == nil {
		return errMockNotImplemented
	}
	return m.upsertItemFunc(ctx, cartID, variantID, quantity)
}

func (m *mockCartStore) SetItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error {
	if m.setItemQuantityFunc == nil {
		return errMockNotImplemented
	}
	return m.setItemQuantityFunc(ctx, cartID, variantID, quantity)
}

func (m *mockCartStore) DeleteItem(ctx context.Context, cartID, variantID uuid.UUID) error {
	if m.deleteItemFunc == nil {
		return errMockNotImplemented
	}
	return m.deleteItemFunc(ctx, cartID, variantID)
}

func (m *mockCartStore) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	if m.deleteItemsFunc == nil {
		return errMockNotImplemented
	}
	return m.deleteItemsFunc(ctx, cartID)
}

func (m *mockCartStore) MergeCarts(ctx context.Context, guestCartID, userCartID uuid.UUID, guestSessionID uuid.UUID) error {
	if m.mergeCartsFunc == nil {
		return errMockNotImplemented
	}
	return m.mergeCartsFunc(ctx, guestCartID, userCartID, guestSessionID)
}

func (m *mockCartStore) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	if m.deleteCartFunc == nil {
		return errMockNotImplemented
	}
	return m.deleteCartFunc(ctx, cartID)
}

// mockVariantStore implements domain.VariantStore for testing
type mockVariantStore struct {
	getVariantFunc func(ctx context.Context, variantID uuid.UUID) (*domain.Variant, error)
}

func (m *mockVariantStore) GetVariant(ctx context.Context, variantID uuid.UUID) (*domain.Variant, error) {
	if m.getVariantFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getVariantFunc(ctx, variantID)
}

// mockGuestStore implements domain.GuestStore for testing
type mockGuestStore struct {
	createGuestSessionFunc         func(ctx context.Context, token uuid.UUID, expiresAt time.Time) (*domain.GuestSession, error)
	getGuestSessionByTokenFunc     func(ctx context.Context, token uuid.UUID) (*domain.GuestSession, error)
	deleteGuestSessionFunc         func(ctx context.Context, id uuid.UUID) error
	deleteExpiredGuestSessionsFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *mockGuestStore) CreateGuestSession(ctx context.Context, token uuid.UUID, expiresAt time.Time) (*domain.GuestSession, error) {
	if m.createGuestSessionFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.createGuestSessionFunc(ctx, token, expiresAt)
}

func (m *mockGuestStore) GetGuestSessionByToken(ctx context.Context, token uuid.UUID) (*domain.GuestSession, error) {
	if m.getGuestSessionByTokenFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getGuestSessionByTokenFunc(ctx, token)
}

func (m *mockGuestStore) DeleteGuestSession(ctx context.Context, id uuid.UUID) error {
	if m.deleteGuestSessionFunc == nil {
		return errMockNotImplemented
	}
	return m.deleteGuestSessionFunc(ctx, id)
}

func (m *mockGuestStore) DeleteExpiredGuestSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	if m.deleteExpiredGuestSessionsFunc == nil {
		return 0, errMockNotImplemented
	}
	return m.deleteExpiredGuestSessionsFunc(ctx, cutoff)
}

// mockUserStore implements domain.UserStore for testing
type mockUserStore struct {
	createUserFunc            func(ctx context.Context, email, passwordHash, firstName, lastName string, status domain.UserStatus) (*domain.User, error)
	getUserByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getUserByEmailFunc        func(ctx context.Context, email string) (*domain.User, error)
	createSessionFunc         func(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	getUserBySessionTokenFunc func(ctx context.Context, token string) (*domain.User, error)
	deleteSessionFunc         func(ctx context.Context, token string) error
}

func (m *mockUserStore) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, status domain.UserStatus) (*domain.User, error) {
	if m.createUserFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.createUserFunc(ctx, email, passwordHash, firstName, lastName, status)
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.getUserByIDFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getUserByIDFunc(ctx, id)
}

func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getUserByEmailFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getUserByEmailFunc(ctx, email)
}

func (m *mockUserStore) CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	if m.createSessionFunc == nil {
		return errMockNotImplemented
	}
	return m.createSessionFunc(ctx, token, userID, expiresAt)
}

func (m *mockUserStore) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if m.getUserBySessionTokenFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getUserBySessionTokenFunc(ctx, token)
}

func (m *mockUserStore) DeleteSession(ctx context.Context, token string) error {
	if m.deleteSessionFunc == nil {
		return errMockNotImplemented
	}
	return m.deleteSessionFunc(ctx, token)
}

// mockOrderStore implements domain.OrderStore for testing
type mockOrderStore struct {
	getOrderFunc                func(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error)
	getOrderByTransactionIDFunc func(ctx context.Context, transactionID string) (*domain.OrderDetail, error)
	createOrderFunc             func(ctx context.Context, insert domain.OrderInsert) (*domain.OrderDetail, error)
}

func (m *mockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	if m.getOrderFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getOrderFunc(ctx, id)
}

func (m *mockOrderStore) GetOrderByTransactionID(ctx context.Context, transactionID string) (*domain.OrderDetail, error) {
	if m.getOrderByTransactionIDFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.getOrderByTransactionIDFunc(ctx, transactionID)
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, insert domain.OrderInsert) (*domain.OrderDetail, error) {
	if m.createOrderFunc == nil {
		return nil, errMockNotImplemented
	}
	return m.createOrderFunc(ctx, insert)
}

// ============================================================================
// Test Fixtures
// ============================================================================

func testPgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func makeTestCart(id uuid.UUID, owner domain.CartOwner) *domain.Cart {
	return &domain.Cart{
		ID:    testPgUUID(id),
		Owner: owner,
	}
}

func makeTestCartItems(lines ...domain.CartItem) []domain.CartItem {
	return lines
}

func makeTestCartItem(variantID uuid.UUID, quantity, unitPriceCents int32) domain.CartItem {
	return domain.CartItem{
		ID:             testPgUUID(uuid.New()),
		VariantID:      testPgUUID(variantID),
		ProductName:    "Cascade Trail Runner",
		VariantName:    "Graphite / US 10",
		SKU:            "CTR-GRA-10",
		ImageURL:       "/images/cascade-trail-runner.jpg",
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
		LineSubtotal:   quantity * unitPriceCents,
	}
}

func makeTestVariant(id uuid.UUID, priceCents int32) *domain.Variant {
	return &domain.Variant{
		ID:         testPgUUID(id),
		SKU:        "CTR-GRA-10",
		Name:       "Graphite / US 10",
		PriceCents: priceCents,
	}
}
