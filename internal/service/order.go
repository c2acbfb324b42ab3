package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stridewear/stride/internal/address"
	"github.com/stridewear/stride/internal/billing"
	"github.com/stridewear/stride/internal/domain"
)

// orderService implements domain.OrderService: it materializes orders
// from completed checkout sessions and resolves order lookups.
type orderService struct {
	orders     domain.OrderStore
	carts      domain.CartStore
	users      domain.UserStore
	provider   billing.Provider
	normalizer address.Normalizer
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(orders domain.OrderStore, carts domain.CartStore, users domain.UserStore, provider billing.Provider, normalizer address.Normalizer, logger *slog.Logger) domain.OrderService {
	return &orderService{
		orders:     orders,
		carts:      carts,
		users:      users,
		provider:   provider,
		normalizer: normalizer,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateOrderFromSession materializes an order from a checkout session.
// Both the webhook and the success-page poller call this; the payment
// transaction ID makes it idempotent, so whichever caller runs second
// gets the order the first one created.
//
// A session whose payment has not completed yet returns (nil, nil):
// not an error, just nothing to materialize.
func (s *orderService) CreateOrderFromSession(ctx context.Context, checkoutSessionID string, userID *uuid.UUID) (*domain.OrderDetail, error) {
	session, err := s.provider.GetCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	if !session.Paid() {
		s.logger.Debug("checkout session not paid yet",
			slog.String("session_id", session.ID),
			slog.String("payment_status", session.PaymentStatus))
		return nil, nil
	}

	txnID := transactionID(session)

	// fast path: a previous call already materialized this payment
	existing, err := s.orders.GetOrderByTransactionID(ctx, txnID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check for existing order: %w", err)
	}

	cartID, err := sessionCartID(session)
	if err != nil {
		return nil, err
	}

	orderUserID, err := s.resolveOrderUser(ctx, session, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.ListItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items for order: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.Errorf(domain.EINTERNAL, "order.materialize",
			"cart %s has no items for session %s", cartID, session.ID)
	}

	orderItems := make([]domain.OrderItem, 0, len(items))
	var totalCents int32
	for _, item := range items {
		orderItems = append(orderItems, domain.OrderItem{
			VariantID:            item.VariantID,
			ProductName:          item.ProductName,
			VariantName:          item.VariantName,
			SKU:                  item.SKU,
			ImageURL:             item.ImageURL,
			Quantity:             item.Quantity,
			PriceAtPurchaseCents: item.UnitPriceCents,
		})
		totalCents += item.LineSubtotal
	}

	shipping, billingAddr := s.sessionAddresses(session)

	detail, err := s.orders.CreateOrder(ctx, domain.OrderInsert{
		UserID:          orderUserID,
		Status:          domain.OrderStatusPaid,
		TotalCents:      totalCents,
		Items:           orderItems,
		ShippingAddress: shipping,
		BillingAddress:  billingAddr,
		Payment: domain.Payment{
			Method:        "stripe",
			Status:        domain.PaymentStatusCompleted,
			AmountCents:   totalCents,
			TransactionID: txnID,
			PaidAt:        pgtype.Timestamptz{Time: s.now(), Valid: true},
		},
		CartID: cartID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrPaymentAlreadyProcessed) {
			// lost the materialization race; the winner's order is
			// committed, return it
			return s.orders.GetOrderByTransactionID(ctx, txnID)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("materialized order from checkout session",
		slog.String("order_id", uid(detail.Order.ID).String()),
		slog.String("session_id", session.ID),
		slog.String("transaction_id", txnID),
		slog.Int("total_cents", int(totalCents)))

	return detail, nil
}

// FindOrder resolves a single identifier to an order. It accepts an
// order ID, a payment transaction ID, or a checkout session ID; the
// last is resolved through the payment provider.
func (s *orderService) FindOrder(ctx context.Context, identifier string) (*domain.OrderDetail, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.ErrOrderNotFound
	}

	if orderID, err := uuid.Parse(identifier); err == nil {
		return s.orders.GetOrder(ctx, orderID)
	}

	detail, err := s.orders.GetOrderByTransactionID(ctx, identifier)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return nil, err
	}

	if strings.HasPrefix(identifier, "cs_") {
		session, err := s.provider.GetCheckoutSession(ctx, identifier)
		if err != nil {
			if errors.Is(err, billing.ErrSessionNotFound) {
				return nil, domain.ErrOrderNotFound
			}
			return nil, fmt.Errorf("failed to resolve checkout session: %w", err)
		}
		return s.orders.GetOrderByTransactionID(ctx, transactionID(session))
	}

	return nil, domain.ErrOrderNotFound
}

// transactionID returns the session's payment intent ID, falling back
// to the session ID for providers or modes that never attach one.
func transactionID(session *billing.CheckoutSession) string {
	if session.PaymentIntentID != "" {
		return session.PaymentIntentID
	}
	return session.ID
}

// sessionCartID extracts and parses the cart ID from session metadata.
func sessionCartID(session *billing.CheckoutSession) (uuid.UUID, error) {
	raw, ok := session.Metadata["cartId"]
	if !ok || raw == "" {
		return uuid.Nil, domain.ErrMissingCartID
	}
	cartID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.WrapError(err, domain.EINVALID, "order.materialize", "Malformed cart ID in session metadata")
	}
	return cartID, nil
}

// resolveOrderUser determines which user the order belongs to:
// the caller's explicit user ID, then the session metadata, then a
// guest account found or created by the email the provider collected.
func (s *orderService) resolveOrderUser(ctx context.Context, session *billing.CheckoutSession, userID *uuid.UUID) (uuid.UUID, error) {
	if userID != nil && *userID != uuid.Nil {
		return *userID, nil
	}

	if raw := session.Metadata["userId"]; raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, domain.WrapError(err, domain.EINVALID, "order.materialize", "Malformed user ID in session metadata")
		}
		return id, nil
	}

	if session.CustomerDetails == nil || session.CustomerDetails.Email == "" {
		return uuid.Nil, domain.ErrMissingCustomerEmail
	}

	return s.getOrCreateGuestUser(ctx, session.CustomerDetails.Email, session.CustomerDetails.Name)
}

// getOrCreateGuestUser finds the user owning the email or creates a
// passwordless guest account for it. Repeat guest checkouts with the
// same email land on the same account.
func (s *orderService) getOrCreateGuestUser(ctx context.Context, email, fullName string) (uuid.UUID, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return uid(user.ID), nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return uuid.Nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	firstName, lastName := splitName(fullName)
	user, err = s.users.CreateUser(ctx, email, "", firstName, lastName, domain.UserStatusGuest)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			// concurrent checkout created the account first
			user, err = s.users.GetUserByEmail(ctx, email)
			if err != nil {
				return uuid.Nil, fmt.Errorf("failed to re-read guest user: %w", err)
			}
			return uid(user.ID), nil
		}
		return uuid.Nil, fmt.Errorf("failed to create guest user: %w", err)
	}

	s.logger.Info("created guest user for order", slog.String("user_id", uid(user.ID).String()))
	return uid(user.ID), nil
}

// sessionAddresses builds normalized shipping and billing addresses
// from whatever the provider collected. Shipping falls back to the
// billing address when the session collected no shipping details.
func (s *orderService) sessionAddresses(session *billing.CheckoutSession) (domain.Address, domain.Address) {
	var payerName string
	var collected address.Address
	if session.CustomerDetails != nil {
		payerName = session.CustomerDetails.Name
		if session.CustomerDetails.Address != nil {
			collected = fromSessionAddress(session.CustomerDetails.Address)
		}
	}
	if collected.Name == "" {
		collected.Name = payerName
	}

	shipping := collected
	if session.ShippingDetails != nil {
		shipping = fromSessionAddress(session.ShippingDetails)
		if shipping.Name == "" {
			shipping.Name = payerName
		}
	}

	shipping = s.normalizer.Normalize(shipping)
	billingAddr := s.normalizer.Normalize(collected)

	return toDomainAddress(shipping, domain.AddressTypeShipping),
		toDomainAddress(billingAddr, domain.AddressTypeBilling)
}

func fromSessionAddress(a *billing.SessionAddress) address.Address {
	return address.Address{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func toDomainAddress(a address.Address, addrType domain.AddressType) domain.Address {
	return domain.Address{
		Type:       addrType,
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// splitName splits a collected full name into first and last parts.
func splitName(fullName string) (string, string) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return "", ""
	}
	parts := strings.SplitN(fullName, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}
