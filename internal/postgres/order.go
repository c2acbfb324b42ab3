package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stridewear/stride/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that OrderStore implements domain.OrderStore.
var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// querier covers both pool and transaction query execution.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// GetOrder returns the full order detail, or domain.ErrOrderNotFound.
func (s *OrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.OrderDetail, error) {
	return s.getOrderDetail(ctx, s.pool, `WHERE o.id = $1`, pgUUID(orderID))
}

// GetOrderByTransactionID resolves a payment transaction ID to its order.
func (s *OrderStore) GetOrderByTransactionID(ctx context.Context, transactionID string) (*domain.OrderDetail, error) {
	return s.getOrderDetail(ctx, s.pool,
		`JOIN payments tp ON tp.order_id = o.id WHERE tp.transaction_id = $1`, transactionID)
}

func (s *OrderStore) getOrderDetail(ctx context.Context, q querier, where string, arg any) (*domain.OrderDetail, error) {
	query := `
		SELECT o.id, o.user_id, o.status, o.total_cents,
		       o.shipping_address_id, o.billing_address_id,
		       o.created_at, o.updated_at,
		       pay.id, pay.method, pay.status, pay.amount_cents,
		       pay.transaction_id, pay.paid_at, pay.created_at,
		       sa.id, sa.name, sa.line1, COALESCE(sa.line2, ''), sa.city,
		       sa.state, sa.postal_code, sa.country,
		       ba.id, ba.name, ba.line1, COALESCE(ba.line2, ''), ba.city,
		       ba.state, ba.postal_code, ba.country
		FROM orders o
		JOIN payments pay ON pay.order_id = o.id
		JOIN addresses sa ON sa.id = o.shipping_address_id
		JOIN addresses ba ON ba.id = o.billing_address_id
		` + where

	var d domain.OrderDetail
	err := q.QueryRow(ctx, query, arg).Scan(
		&d.Order.ID, &d.Order.UserID, &d.Order.Status, &d.Order.TotalCents,
		&d.Order.ShippingAddressID, &d.Order.BillingAddressID,
		&d.Order.CreatedAt, &d.Order.UpdatedAt,
		&d.Payment.ID, &d.Payment.Method, &d.Payment.Status, &d.Payment.AmountCents,
		&d.Payment.TransactionID, &d.Payment.PaidAt, &d.Payment.CreatedAt,
		&d.ShippingAddress.ID, &d.ShippingAddress.Name, &d.ShippingAddress.Line1,
		&d.ShippingAddress.Line2, &d.ShippingAddress.City, &d.ShippingAddress.State,
		&d.ShippingAddress.PostalCode, &d.ShippingAddress.Country,
		&d.BillingAddress.ID, &d.BillingAddress.Name, &d.BillingAddress.Line1,
		&d.BillingAddress.Line2, &d.BillingAddress.City, &d.BillingAddress.State,
		&d.BillingAddress.PostalCode, &d.BillingAddress.Country,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}

	d.Payment.OrderID = d.Order.ID
	d.ShippingAddress.Type = domain.AddressTypeShipping
	d.BillingAddress.Type = domain.AddressTypeBilling

	items, err := s.listOrderItems(ctx, q, d.Order.ID)
	if err != nil {
		return nil, err
	}
	d.Items = items

	return &d, nil
}

func (s *OrderStore) listOrderItems(ctx context.Context, q querier, orderID pgtype.UUID) ([]domain.OrderItem, error) {
	const query = `
		SELECT id, order_id, variant_id, product_name, variant_name, sku,
		       image_url, quantity, price_at_purchase_cents
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_name, variant_name`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.listItems", "failed to list order items")
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.VariantID, &item.ProductName,
			&item.VariantName, &item.SKU, &item.ImageURL, &item.Quantity, &item.PriceAtPurchaseCents,
		); err != nil {
			return nil, domain.Internal(err, "order.listItems", "failed to scan order item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "order.listItems", "failed to read order items")
	}

	return items, nil
}

// CreateOrder writes the order, items, addresses and payment, and clears
// the cart's items, in one transaction. The unique index on
// payments.transaction_id turns a materialization race into
// domain.ErrPaymentAlreadyProcessed; callers re-read the winner's order.
func (s *OrderStore) CreateOrder(ctx context.Context, ins domain.OrderInsert) (*domain.OrderDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	shippingID, err := insertAddress(ctx, tx, ins.ShippingAddress, domain.AddressTypeShipping)
	if err != nil {
		return nil, err
	}
	billingID, err := insertAddress(ctx, tx, ins.BillingAddress, domain.AddressTypeBilling)
	if err != nil {
		return nil, err
	}

	const orderQ = `
		INSERT INTO orders (user_id, status, total_cents, shipping_address_id, billing_address_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var orderID pgtype.UUID
	err = tx.QueryRow(ctx, orderQ,
		pgUUID(ins.UserID), ins.Status, ins.TotalCents, shippingID, billingID,
	).Scan(&orderID)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to insert order")
	}

	const itemQ = `
		INSERT INTO order_items (order_id, variant_id, product_name, variant_name, sku, image_url, quantity, price_at_purchase_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, item := range ins.Items {
		if _, err := tx.Exec(ctx, itemQ,
			orderID, item.VariantID, item.ProductName, item.VariantName,
			item.SKU, item.ImageURL, item.Quantity, item.PriceAtPurchaseCents,
		); err != nil {
			return nil, domain.Internal(err, "order.create", "failed to insert order item")
		}
	}

	const paymentQ = `
		INSERT INTO payments (order_id, method, status, amount_cents, transaction_id, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := tx.Exec(ctx, paymentQ,
		orderID, ins.Payment.Method, ins.Payment.Status,
		ins.Payment.AmountCents, ins.Payment.TransactionID, ins.Payment.PaidAt,
	); err != nil {
		if isUniqueViolation(err, "payments_transaction_id_key") {
			return nil, domain.ErrPaymentAlreadyProcessed
		}
		return nil, domain.Internal(err, "order.create", "failed to insert payment")
	}

	// the cart row persists; only its lines are consumed
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, pgUUID(ins.CartID)); err != nil {
		return nil, domain.Internal(err, "order.create", "failed to clear cart items")
	}

	detail, err := s.getOrderDetail(ctx, tx, `WHERE o.id = $1`, orderID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.Internal(err, "order.create", "failed to commit order")
	}
	return detail, nil
}

func insertAddress(ctx context.Context, tx pgx.Tx, addr domain.Address, typ domain.AddressType) (pgtype.UUID, error) {
	const q = `
		INSERT INTO addresses (type, name, line1, line2, city, state, postal_code, country)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING id`

	var id pgtype.UUID
	err := tx.QueryRow(ctx, q,
		typ, addr.Name, addr.Line1, addr.Line2, addr.City, addr.State,
		addr.PostalCode, addr.Country,
	).Scan(&id)
	if err != nil {
		return pgtype.UUID{}, domain.Internal(err, "order.create", "failed to insert address")
	}
	return id, nil
}
