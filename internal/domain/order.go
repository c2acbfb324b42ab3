package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Order-related domain errors.
var (
	ErrOrderNotFound           = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrPaymentAlreadyProcessed = &Error{Code: ECONFLICT, Message: "Checkout session already processed"}
	ErrMissingCartID           = &Error{Code: EINVALID, Message: "Cart ID missing from session metadata"}
	ErrMissingCustomerEmail    = &Error{Code: EINVALID, Message: "Customer email missing from checkout session"}
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents the state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// AddressType discriminates shipping from billing addresses.
type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
)

// OrderService materializes and retrieves orders.
type OrderService interface {
	// CreateOrderFromSession materializes an order from a completed
	// checkout session. Idempotent on the session's transaction ID:
	// repeat calls return the already-created order. A session whose
	// payment is still pending returns (nil, nil).
	//
	// userID overrides the session metadata when non-nil (the webhook
	// path passes the metadata value explicitly).
	CreateOrderFromSession(ctx context.Context, checkoutSessionID string, userID *uuid.UUID) (*OrderDetail, error)

	// FindOrder resolves a single identifier to an order: an order ID,
	// a payment transaction ID, or a checkout session ID ("cs_" prefix,
	// resolved through the payment provider).
	FindOrder(ctx context.Context, identifier string) (*OrderDetail, error)
}

// Order represents an order row. Amounts are integer cents.
type Order struct {
	ID                pgtype.UUID
	UserID            pgtype.UUID
	Status            OrderStatus
	TotalCents        int32
	ShippingAddressID pgtype.UUID
	BillingAddressID  pgtype.UUID
	CreatedAt         pgtype.Timestamptz
	UpdatedAt         pgtype.Timestamptz
}

// OrderItem represents an order line with the unit price frozen at
// materialization time.
type OrderItem struct {
	ID                   pgtype.UUID
	OrderID              pgtype.UUID
	VariantID            pgtype.UUID
	ProductName          string
	VariantName          string
	SKU                  string
	ImageURL             string
	Quantity             int32
	PriceAtPurchaseCents int32
}

// Payment represents the payment record backing an order. TransactionID
// is the idempotency key for order materialization and is unique.
type Payment struct {
	ID            pgtype.UUID
	OrderID       pgtype.UUID
	Method        string
	Status        PaymentStatus
	AmountCents   int32
	TransactionID string
	PaidAt        pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
}

// Address represents a shipping or billing address attached to an order.
type Address struct {
	ID         pgtype.UUID
	Type       AddressType
	Name       string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// OrderDetail aggregates order information with items, addresses and
// the payment record.
type OrderDetail struct {
	Order           Order
	Items           []OrderItem
	ShippingAddress Address
	BillingAddress  Address
	Payment         Payment
}

// OrderInsert carries everything the store writes in the single
// materialization transaction.
type OrderInsert struct {
	UserID          uuid.UUID
	Status          OrderStatus
	TotalCents      int32
	Items           []OrderItem
	ShippingAddress Address
	BillingAddress  Address
	Payment         Payment
	// CartID names the cart whose items are deleted in the same
	// transaction. The cart row itself persists.
	CartID uuid.UUID
}

// OrderStore is the persistence interface for orders and payments.
type OrderStore interface {
	// GetOrder returns the full order detail, or ErrOrderNotFound.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)

	// GetOrderByTransactionID resolves a payment transaction ID to its
	// order, or ErrOrderNotFound.
	GetOrderByTransactionID(ctx context.Context, transactionID string) (*OrderDetail, error)

	// CreateOrder inserts the order, items, addresses and payment, and
	// clears the cart's items, in one transaction. A unique violation
	// on the payment transaction ID returns ErrPaymentAlreadyProcessed.
	CreateOrder(ctx context.Context, ins OrderInsert) (*OrderDetail, error)
}
