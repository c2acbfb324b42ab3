package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/cookie"
	"github.com/stridewear/stride/internal/domain"
	"github.com/stridewear/stride/internal/handler"
	"github.com/stridewear/stride/internal/telemetry"
)

// CartHandler handles the JSON cart endpoints.
type CartHandler struct {
	carts    domain.CartService
	resolver domain.SessionResolver
	cookies  *cookie.Config
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts domain.CartService, resolver domain.SessionResolver, cookies *cookie.Config, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		carts:    carts,
		resolver: resolver,
		cookies:  cookies,
		validate: newValidator(),
		logger:   logger,
	}
}

type addItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid"`
	Quantity  int32  `json:"quantity" validate:"required,gt=0"`
}

// setQuantityRequest uses a pointer so an explicit zero (remove the
// line) passes required validation.
type setQuantityRequest struct {
	Quantity *int32 `json:"quantity" validate:"required"`
}

type cartItemPayload struct {
	VariantID         string `json:"variant_id"`
	ProductName       string `json:"product_name"`
	VariantName       string `json:"variant_name"`
	SKU               string `json:"sku"`
	Quantity          int32  `json:"quantity"`
	UnitPriceCents    int32  `json:"unit_price_cents"`
	UnitPrice         string `json:"unit_price"`
	LineSubtotalCents int32  `json:"line_subtotal_cents"`
	LineSubtotal      string `json:"line_subtotal"`
	ImageURL          string `json:"image_url,omitempty"`
}

type cartPayload struct {
	Items         []cartItemPayload `json:"items"`
	ItemCount     int32             `json:"item_count"`
	SubtotalCents int32             `json:"subtotal_cents"`
	Subtotal      string            `json:"subtotal"`
	Authenticated bool              `json:"authenticated"`
}

func cartResponse(ctx context.Context, summary *domain.CartSummary) cartPayload {
	_, authenticated := domain.IdentityFromContext(ctx).UserID()
	payload := cartPayload{
		Items:         []cartItemPayload{},
		ItemCount:     summary.ItemCount,
		SubtotalCents: summary.Subtotal,
		Subtotal:      domain.FormatCents(summary.Subtotal),
		Authenticated: authenticated,
	}
	for _, item := range summary.Items {
		payload.Items = append(payload.Items, cartItemPayload{
			VariantID:         uuid.UUID(item.VariantID.Bytes).String(),
			ProductName:       item.ProductName,
			VariantName:       item.VariantName,
			SKU:               item.SKU,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			UnitPrice:         domain.FormatCents(item.UnitPriceCents),
			LineSubtotalCents: item.LineSubtotal,
			LineSubtotal:      domain.FormatCents(item.LineSubtotal),
			ImageURL:          item.ImageURL,
		})
	}
	return payload
}

// Get handles GET /api/cart. Reading never creates a guest session: an
// anonymous visitor gets an empty cart payload.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := domain.CartOwnerFromIdentity(domain.IdentityFromContext(ctx))
	if !ok {
		respondJSON(w, http.StatusOK, cartResponse(ctx, &domain.CartSummary{}))
		return
	}

	summary, err := h.carts.GetCartSummary(ctx, owner)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(ctx, summary))
}

// AddItem handles POST /api/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req addItemRequest
	if err := decodeAndValidate(r, h.validate, "cart.add_item", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "cart.add_item", "Invalid variant ID"))
		return
	}

	owner, err := h.ensureOwner(w, r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.AddItem(ctx, owner, variantID, req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if m := telemetry.Business; m != nil {
		m.CartItemsAdded.WithLabelValues(string(owner.Kind())).Inc()
	}

	respondJSON(w, http.StatusOK, cartResponse(ctx, summary))
}

// UpdateItem handles PATCH /api/cart/items/{variantID}. Quantity zero
// or below removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	variantID, err := uuid.Parse(r.PathValue("variantID"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "cart.update_item", "Invalid variant ID"))
		return
	}

	var req setQuantityRequest
	if err := decodeAndValidate(r, h.validate, "cart.update_item", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	owner, err := h.ensureOwner(w, r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.SetItemQuantity(ctx, owner, variantID, *req.Quantity)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(ctx, summary))
}

// RemoveItem handles DELETE /api/cart/items/{variantID}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	variantID, err := uuid.Parse(r.PathValue("variantID"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "cart.remove_item", "Invalid variant ID"))
		return
	}

	owner, err := h.ensureOwner(w, r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.RemoveItem(ctx, owner, variantID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(ctx, summary))
}

// Clear handles DELETE /api/cart. An anonymous visitor has nothing to
// clear and gets an empty payload without a session being created.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := domain.CartOwnerFromIdentity(domain.IdentityFromContext(ctx))
	if !ok {
		respondJSON(w, http.StatusOK, cartResponse(ctx, &domain.CartSummary{}))
		return
	}

	if err := h.carts.ClearCart(ctx, owner); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.carts.GetCartSummary(ctx, owner)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(ctx, summary))
}

// ensureOwner resolves the request identity to a cart owner, creating a
// guest session (and setting its cookie) when the visitor is anonymous.
func (h *CartHandler) ensureOwner(w http.ResponseWriter, r *http.Request) (domain.CartOwner, error) {
	identity := domain.IdentityFromContext(r.Context())
	if owner, ok := domain.CartOwnerFromIdentity(identity); ok {
		return owner, nil
	}

	guest, created, err := h.resolver.EnsureGuest(r.Context(), cookie.Get(r, cookie.GuestSession))
	if err != nil {
		return domain.CartOwner{}, err
	}
	if created {
		h.cookies.SetGuestSession(w, uuid.UUID(guest.Token.Bytes).String())
	}

	return domain.GuestCartOwner(uuid.UUID(guest.ID.Bytes)), nil
}
