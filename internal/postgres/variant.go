package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stridewear/stride/internal/domain"
)

// VariantStore implements domain.VariantStore using PostgreSQL.
type VariantStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that VariantStore implements domain.VariantStore.
var _ domain.VariantStore = (*VariantStore)(nil)

// NewVariantStore creates a new PostgreSQL-backed variant store.
func NewVariantStore(pool *pgxpool.Pool) *VariantStore {
	return &VariantStore{pool: pool}
}

const variantSelect = `
	SELECT pv.id, pv.product_id, p.name, pv.name, pv.sku,
	       pv.price_cents, pv.sale_price_cents, pv.image_url,
	       pv.created_at, pv.updated_at
	FROM product_variants pv
	JOIN products p ON p.id = pv.product_id`

func scanVariant(row pgx.Row) (*domain.Variant, error) {
	var v domain.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.ProductName, &v.Name, &v.SKU,
		&v.PriceCents, &v.SalePriceCents, &v.ImageURL,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetVariant returns the variant joined with its product name.
func (s *VariantStore) GetVariant(ctx context.Context, id uuid.UUID) (*domain.Variant, error) {
	v, err := scanVariant(s.pool.QueryRow(ctx, variantSelect+` WHERE pv.id = $1`, pgUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, domain.Internal(err, "variant.get", "failed to get variant")
	}
	return v, nil
}

