package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stridewear/stride/internal/domain"
)

// CartStore implements domain.CartStore using PostgreSQL.
type CartStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CartStore implements domain.CartStore.
var _ domain.CartStore = (*CartStore)(nil)

// NewCartStore creates a new PostgreSQL-backed cart store.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// ownerColumns maps a cart owner to its (user_id, guest_session_id) pair.
func ownerColumns(owner domain.CartOwner) (pgtype.UUID, pgtype.UUID, error) {
	if userID, ok := owner.UserID(); ok {
		return pgUUID(userID), pgtype.UUID{}, nil
	}
	if guestID, ok := owner.GuestSessionID(); ok {
		return pgtype.UUID{}, pgUUID(guestID), nil
	}
	return pgtype.UUID{}, pgtype.UUID{}, domain.ErrNoCartOwner
}

// scanCartRow builds a domain.Cart from the standard cart column set.
func scanCartRow(id, userID, guestID pgtype.UUID, createdAt, updatedAt pgtype.Timestamptz) *domain.Cart {
	var owner domain.CartOwner
	if userID.Valid {
		owner = domain.UserCartOwner(fromPgUUID(userID))
	} else {
		owner = domain.GuestCartOwner(fromPgUUID(guestID))
	}
	return &domain.Cart{
		ID:        id,
		Owner:     owner,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// GetCartByOwner returns the owner's cart, or domain.ErrCartNotFound.
func (s *CartStore) GetCartByOwner(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	userID, guestID, err := ownerColumns(owner)
	if err != nil {
		return nil, err
	}

	const q = `
		SELECT id, user_id, guest_session_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1 OR guest_session_id = $2`

	var (
		id, rowUserID, rowGuestID pgtype.UUID
		createdAt, updatedAt      pgtype.Timestamptz
	)
	err = s.pool.QueryRow(ctx, q, userID, guestID).
		Scan(&id, &rowUserID, &rowGuestID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, "cart.getByOwner", "failed to get cart")
	}

	return scanCartRow(id, rowUserID, rowGuestID, createdAt, updatedAt), nil
}

// CreateCart inserts a cart for the owner.
func (s *CartStore) CreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	userID, guestID, err := ownerColumns(owner)
	if err != nil {
		return nil, err
	}

	const q = `
		INSERT INTO carts (user_id, guest_session_id)
		VALUES ($1, $2)
		RETURNING id, user_id, guest_session_id, created_at, updated_at`

	var (
		id, rowUserID, rowGuestID pgtype.UUID
		createdAt, updatedAt      pgtype.Timestamptz
	)
	err = s.pool.QueryRow(ctx, q, userID, guestID).
		Scan(&id, &rowUserID, &rowGuestID, &createdAt, &updatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			// lost a create race; the surviving cart is the caller's
			return nil, domain.Conflict("cart.create", "cart already exists for owner")
		}
		return nil, domain.Internal(err, "cart.create", "failed to create cart")
	}

	return scanCartRow(id, rowUserID, rowGuestID, createdAt, updatedAt), nil
}

// ListItems returns the cart's lines joined with variant pricing. The
// effective unit price resolves the sale price at read time.
func (s *CartStore) ListItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	const q = `
		SELECT ci.id, ci.variant_id, p.name, pv.name, pv.sku, ci.quantity,
		       COALESCE(pv.sale_price_cents, pv.price_cents) AS unit_price_cents,
		       COALESCE(pv.image_url, '') AS image_url
		FROM cart_items ci
		JOIN product_variants pv ON pv.id = ci.variant_id
		JOIN products p ON p.id = pv.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at`

	rows, err := s.pool.Query(ctx, q, pgUUID(cartID))
	if err != nil {
		return nil, domain.Internal(err, "cart.listItems", "failed to list cart items")
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID, &item.VariantID, &item.ProductName, &item.VariantName,
			&item.SKU, &item.Quantity, &item.UnitPriceCents, &item.ImageURL,
		); err != nil {
			return nil, domain.Internal(err, "cart.listItems", "failed to scan cart item")
		}
		item.LineSubtotal = item.UnitPriceCents * item.Quantity
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "cart.listItems", "failed to read cart items")
	}

	return items, nil
}

// UpsertItem adds quantity to a cart line, inserting it when absent. The
// addition happens in SQL so concurrent adds for the same variant sum.
func (s *CartStore) UpsertItem(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error {
	const q = `
		INSERT INTO cart_items (cart_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT cart_items_cart_variant_unique
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              updated_at = now()`

	if _, err := s.pool.Exec(ctx, q, pgUUID(cartID), pgUUID(variantID), quantity); err != nil {
		return domain.Internal(err, "cart.upsertItem", "failed to upsert cart item")
	}
	return nil
}

// SetItemQuantity sets a line to an absolute quantity.
func (s *CartStore) SetItemQuantity(ctx context.Context, cartID, variantID uuid.UUID, quantity int32) error {
	const q = `
		UPDATE cart_items
		SET quantity = $3, updated_at = now()
		WHERE cart_id = $1 AND variant_id = $2`

	tag, err := s.pool.Exec(ctx, q, pgUUID(cartID), pgUUID(variantID), quantity)
	if err != nil {
		return domain.Internal(err, "cart.setItemQuantity", "failed to update cart item")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// DeleteItem removes a line. Deleting an absent line is a no-op.
func (s *CartStore) DeleteItem(ctx context.Context, cartID, variantID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2`
	if _, err := s.pool.Exec(ctx, q, pgUUID(cartID), pgUUID(variantID)); err != nil {
		return domain.Internal(err, "cart.deleteItem", "failed to delete cart item")
	}
	return nil
}

// DeleteItems removes all lines from the cart.
func (s *CartStore) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	const q = `DELETE FROM cart_items WHERE cart_id = $1`
	if _, err := s.pool.Exec(ctx, q, pgUUID(cartID)); err != nil {
		return domain.Internal(err, "cart.deleteItems", "failed to clear cart")
	}
	return nil
}

// MergeCarts folds the guest cart into the user cart in one transaction:
// quantities sum on shared variants, then the guest cart and its session
// row are deleted. Rollback on any failure leaves both carts intact.
func (s *CartStore) MergeCarts(ctx context.Context, guestCartID, userCartID, guestSessionID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "cart.merge", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	const mergeQ = `
		INSERT INTO cart_items (cart_id, variant_id, quantity)
		SELECT $2, variant_id, quantity
		FROM cart_items
		WHERE cart_id = $1
		ON CONFLICT ON CONSTRAINT cart_items_cart_variant_unique
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity,
		              updated_at = now()`

	if _, err := tx.Exec(ctx, mergeQ, pgUUID(guestCartID), pgUUID(userCartID)); err != nil {
		return domain.Internal(err, "cart.merge", "failed to merge cart items")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, pgUUID(guestCartID)); err != nil {
		return domain.Internal(err, "cart.merge", "failed to delete guest cart items")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE id = $1`, pgUUID(guestCartID)); err != nil {
		return domain.Internal(err, "cart.merge", "failed to delete guest cart")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM guest_sessions WHERE id = $1`, pgUUID(guestSessionID)); err != nil {
		return domain.Internal(err, "cart.merge", "failed to delete guest session")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "cart.merge", "failed to commit merge")
	}
	return nil
}

// DeleteCart removes the cart row and its lines.
func (s *CartStore) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, pgUUID(cartID)); err != nil {
		return domain.Internal(err, "cart.delete", fmt.Sprintf("failed to delete cart %s", cartID))
	}
	return nil
}
