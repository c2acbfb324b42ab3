package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProductStatus represents the publication state of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product represents a product row.
type Product struct {
	ID          pgtype.UUID
	Name        string
	Slug        string
	Description pgtype.Text
	Status      ProductStatus
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// Variant represents a sellable product variant (a size/color of a
// product). Prices are integer cents; SalePriceCents, when valid,
// is the effective unit price.
type Variant struct {
	ID             pgtype.UUID
	ProductID      pgtype.UUID
	ProductName    string
	Name           string
	SKU            string
	PriceCents     int32
	SalePriceCents pgtype.Int4
	ImageURL       pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

// EffectiveUnitPriceCents returns the sale price when one is set, else
// the regular price.
func (v *Variant) EffectiveUnitPriceCents() int32 {
	if v.SalePriceCents.Valid {
		return v.SalePriceCents.Int32
	}
	return v.PriceCents
}

// VariantStore is the persistence interface for product variants.
type VariantStore interface {
	// GetVariant returns the variant joined with its product name, or
	// ErrVariantNotFound.
	GetVariant(ctx context.Context, id uuid.UUID) (*Variant, error)
}
