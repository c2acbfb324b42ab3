package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
)

// cartService implements domain.CartService on top of the cart and
// variant stores.
type cartService struct {
	carts    domain.CartStore
	variants domain.VariantStore
	logger   *slog.Logger
}

// NewCartService creates a new CartService instance.
func NewCartService(carts domain.CartStore, variants domain.VariantStore, logger *slog.Logger) domain.CartService {
	return &cartService{
		carts:    carts,
		variants: variants,
		logger:   logger,
	}
}

// GetOrCreateCart retrieves the owner's cart, creating it if absent.
// A lost create race resolves by re-reading the winner's cart.
func (s *cartService) GetOrCreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrNoCartOwner
	}

	cart, err := s.carts.GetCartByOwner(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrCartNotFound) {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart, err = s.carts.CreateCart(ctx, owner)
	if err != nil {
		if domain.IsCode(err, domain.ECONFLICT) {
			return s.carts.GetCartByOwner(ctx, owner)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	return cart, nil
}

// GetCartSummary retrieves the owner's cart with items and totals. An
// owner without a cart gets an empty summary.
func (s *cartService) GetCartSummary(ctx context.Context, owner domain.CartOwner) (*domain.CartSummary, error) {
	if !owner.Valid() {
		return nil, ErrNoCartOwner
	}

	cart, err := s.carts.GetCartByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return &domain.CartSummary{}, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return s.summarize(ctx, cart)
}

// AddItem adds a variant to the owner's cart or increments its quantity.
func (s *cartService) AddItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// reject unknown variants before touching the cart
	if _, err := s.variants.GetVariant(ctx, variantID); err != nil {
		return nil, err
	}

	cart, err := s.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := s.carts.UpsertItem(ctx, uid(cart.ID), variantID, quantity); err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	s.logger.Debug("added cart item",
		slog.String("cart_id", uid(cart.ID).String()),
		slog.String("variant_id", variantID.String()),
		slog.Int("quantity", int(quantity)))

	return s.summarize(ctx, cart)
}

// SetItemQuantity sets a line to an absolute quantity. Zero or negative
// removes the line; setting the current value is a no-op success.
func (s *cartService) SetItemQuantity(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID, quantity int32) (*domain.CartSummary, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, owner, variantID)
	}

	cart, err := s.requireCart(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return &domain.CartSummary{}, nil
		}
		return nil, err
	}

	if err := s.carts.SetItemQuantity(ctx, uid(cart.ID), variantID, quantity); err != nil {
		if errors.Is(err, domain.ErrCartItemNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update item quantity: %w", err)
	}

	return s.summarize(ctx, cart)
}

// RemoveItem removes a variant's line from the owner's cart. Removing an
// absent line succeeds, as does removing from an owner with no cart yet.
func (s *cartService) RemoveItem(ctx context.Context, owner domain.CartOwner, variantID uuid.UUID) (*domain.CartSummary, error) {
	cart, err := s.requireCart(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return &domain.CartSummary{}, nil
		}
		return nil, err
	}

	if err := s.carts.DeleteItem(ctx, uid(cart.ID), variantID); err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	return s.summarize(ctx, cart)
}

// ClearCart removes all items from the owner's cart. The cart row
// persists; an owner with no cart has nothing to clear.
func (s *cartService) ClearCart(ctx context.Context, owner domain.CartOwner) error {
	cart, err := s.requireCart(ctx, owner)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return err
	}

	if err := s.carts.DeleteItems(ctx, uid(cart.ID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// MergeGuestCart folds the guest's cart into the user's cart, summing
// quantities on shared variants, then removes the guest cart and
// session. Missing or empty guest carts are a no-op, which makes the
// merge idempotent across sign-in retries.
func (s *cartService) MergeGuestCart(ctx context.Context, guestSessionID, userID uuid.UUID) error {
	guestCart, err := s.carts.GetCartByOwner(ctx, domain.GuestCartOwner(guestSessionID))
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get guest cart: %w", err)
	}

	items, err := s.carts.ListItems(ctx, uid(guestCart.ID))
	if err != nil {
		return fmt.Errorf("failed to list guest cart items: %w", err)
	}
	if len(items) == 0 {
		// nothing to carry over; still retire the guest cart
		if err := s.carts.DeleteCart(ctx, uid(guestCart.ID)); err != nil {
			return fmt.Errorf("failed to delete empty guest cart: %w", err)
		}
		return nil
	}

	userCart, err := s.GetOrCreateCart(ctx, domain.UserCartOwner(userID))
	if err != nil {
		return fmt.Errorf("failed to get user cart for merge: %w", err)
	}

	if err := s.carts.MergeCarts(ctx, uid(guestCart.ID), uid(userCart.ID), guestSessionID); err != nil {
		return fmt.Errorf("failed to merge carts: %w", err)
	}

	s.logger.Info("merged guest cart into user cart",
		slog.String("guest_cart_id", uid(guestCart.ID).String()),
		slog.String("user_cart_id", uid(userCart.ID).String()),
		slog.Int("line_count", len(items)))

	return nil
}

// requireCart returns the owner's existing cart or ErrCartNotFound.
func (s *cartService) requireCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrNoCartOwner
	}
	return s.carts.GetCartByOwner(ctx, owner)
}

// summarize recomputes items, count and subtotal from the store. The
// subtotal is always derived from current effective unit prices, never
// cached.
func (s *cartService) summarize(ctx context.Context, cart *domain.Cart) (*domain.CartSummary, error) {
	items, err := s.carts.ListItems(ctx, uid(cart.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	summary := &domain.CartSummary{
		Cart:  *cart,
		Items: items,
	}
	for _, item := range items {
		summary.Subtotal += item.LineSubtotal
		summary.ItemCount += item.Quantity
	}

	return summary, nil
}
