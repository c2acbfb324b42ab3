package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrVariantNotFound  = &Error{Code: ENOTFOUND, Message: "Product variant not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrCartEmpty        = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrNoCartOwner      = &Error{Code: EUNAUTHORIZED, Message: "No shopper session for cart operation"}
)

// CartService provides business logic for shopping cart operations.
type CartService interface {
	// GetOrCreateCart retrieves the owner's cart, creating it if absent.
	GetOrCreateCart(ctx context.Context, owner CartOwner) (*Cart, error)

	// GetCartSummary retrieves the owner's cart with items and totals.
	// An owner with no cart yet gets an empty summary, not an error.
	GetCartSummary(ctx context.Context, owner CartOwner) (*CartSummary, error)

	// AddItem adds a variant to the owner's cart or increments its
	// quantity if the line already exists. Quantity must be >= 1.
	AddItem(ctx context.Context, owner CartOwner, variantID uuid.UUID, quantity int32) (*CartSummary, error)

	// SetItemQuantity sets a line to an absolute quantity.
	// Zero or negative removes the line.
	SetItemQuantity(ctx context.Context, owner CartOwner, variantID uuid.UUID, quantity int32) (*CartSummary, error)

	// RemoveItem removes a variant's line from the owner's cart.
	RemoveItem(ctx context.Context, owner CartOwner, variantID uuid.UUID) (*CartSummary, error)

	// ClearCart removes all items from the owner's cart.
	// The cart row itself persists.
	ClearCart(ctx context.Context, owner CartOwner) error

	// MergeGuestCart folds a guest cart into the user's cart, summing
	// quantities for shared variants, then deletes the guest cart and
	// guest session. A missing or empty guest cart is a no-op.
	MergeGuestCart(ctx context.Context, guestSessionID, userID uuid.UUID) error
}

// Cart represents a cart row. Owner is exactly one of a user or a guest
// session.
type Cart struct {
	ID        pgtype.UUID
	Owner     CartOwner
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// CartSummary aggregates cart information with items and calculated totals.
// Monetary fields are integer cents; display strings are derived at the
// serialization boundary.
type CartSummary struct {
	Cart      Cart
	Items     []CartItem
	Subtotal  int32
	ItemCount int32
}

// CartItem represents a cart line with variant details and the effective
// unit price at read time (sale price when present, else regular price).
type CartItem struct {
	ID             pgtype.UUID
	VariantID      pgtype.UUID
	ProductName    string
	VariantName    string
	SKU            string
	Quantity       int32
	UnitPriceCents int32
	LineSubtotal   int32
	ImageURL       string
}

// CartStore is the persistence interface for carts and cart items.
type CartStore interface {
	// GetCartByOwner returns the owner's cart, or ErrCartNotFound.
	GetCartByOwner(ctx context.Context, owner CartOwner) (*Cart, error)

	// CreateCart inserts a cart for the owner. The one-cart-per-owner
	// unique constraints make concurrent creates fail with a conflict.
	CreateCart(ctx context.Context, owner CartOwner) (*Cart, error)

	// ListItems returns the cart's lines joined with variant pricing.
	ListItems(ctx context.Context, cartID uuid.UUID) ([]CartItem, error)

	// UpsertItem adds quantity to the (cart, variant) line, inserting it
	// when absent. The addition is performed in SQL, so concurrent
	// upserts sum rather than clobber.
	UpsertItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error

	// SetItemQuantity sets the line to an absolute quantity.
	// Returns ErrCartItemNotFound when the line does not exist.
	SetItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error

	// DeleteItem removes the line. Deleting an absent line is a no-op.
	DeleteItem(ctx context.Context, cartID, variantID uuid.UUID) error

	// DeleteItems removes all lines from the cart.
	DeleteItems(ctx context.Context, cartID uuid.UUID) error

	// MergeCarts atomically folds the guest cart's lines into the user
	// cart (summing quantities on shared variants), deletes the guest
	// cart and its lines, and deletes the guest session row.
	MergeCarts(ctx context.Context, guestCartID, userCartID, guestSessionID uuid.UUID) error

	// DeleteCart removes the cart row and its lines.
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
}
