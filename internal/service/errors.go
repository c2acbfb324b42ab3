package service

import (
	"github.com/stridewear/stride/internal/domain"
)

// Cart errors - aliases of the domain sentinels for call sites that
// import service only.
var (
	ErrCartNotFound     = domain.ErrCartNotFound
	ErrCartItemNotFound = domain.ErrCartItemNotFound
	ErrVariantNotFound  = domain.ErrVariantNotFound
	ErrInvalidQuantity  = domain.ErrInvalidQuantity
	ErrCartEmpty        = domain.ErrCartEmpty
	ErrNoCartOwner      = domain.ErrNoCartOwner
)

// Order-related errors
var (
	ErrOrderNotFound           = domain.ErrOrderNotFound
	ErrPaymentAlreadyProcessed = domain.ErrPaymentAlreadyProcessed
	ErrMissingCartID           = domain.ErrMissingCartID
	ErrMissingCustomerEmail    = domain.ErrMissingCustomerEmail
)

// Account errors
var (
	ErrEmailTaken         = domain.ErrEmailTaken
	ErrInvalidCredentials = domain.ErrInvalidCredentials
)

// Checkout errors
var (
	ErrCheckoutFailed = domain.Errorf(domain.EINTERNAL, "", "Failed to create checkout session")
)
