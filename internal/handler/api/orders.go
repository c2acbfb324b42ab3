package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
	"github.com/stridewear/stride/internal/handler"
	"github.com/stridewear/stride/internal/telemetry"
)

// OrdersHandler serves order lookup for the checkout success page.
type OrdersHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(orders domain.OrderService, logger *slog.Logger) *OrdersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrdersHandler{orders: orders, logger: logger}
}

type orderItemPayload struct {
	ProductName    string `json:"product_name"`
	VariantName    string `json:"variant_name"`
	SKU            string `json:"sku"`
	ImageURL       string `json:"image_url,omitempty"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int32  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
	LineTotalCents int32  `json:"line_total_cents"`
	LineTotal      string `json:"line_total"`
}

type addressPayload struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type paymentPayload struct {
	Method        string `json:"method"`
	Status        string `json:"status"`
	AmountCents   int32  `json:"amount_cents"`
	Amount        string `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

type orderPayload struct {
	ID              string             `json:"id"`
	Status          string             `json:"status"`
	TotalCents      int32              `json:"total_cents"`
	Total           string             `json:"total"`
	CreatedAt       time.Time          `json:"created_at"`
	Items           []orderItemPayload `json:"items"`
	ShippingAddress addressPayload     `json:"shipping_address"`
	BillingAddress  addressPayload     `json:"billing_address"`
	Payment         paymentPayload     `json:"payment"`
}

// orderEnvelope wraps the order so the success-page poll can
// distinguish "still pending" (null) from "found".
type orderEnvelope struct {
	Order *orderPayload `json:"order"`
}

func orderResponse(detail *domain.OrderDetail) *orderPayload {
	payload := &orderPayload{
		ID:              uuid.UUID(detail.Order.ID.Bytes).String(),
		Status:          string(detail.Order.Status),
		TotalCents:      detail.Order.TotalCents,
		Total:           domain.FormatCents(detail.Order.TotalCents),
		CreatedAt:       detail.Order.CreatedAt.Time,
		Items:           []orderItemPayload{},
		ShippingAddress: addressResponse(detail.ShippingAddress),
		BillingAddress:  addressResponse(detail.BillingAddress),
		Payment: paymentPayload{
			Method:        detail.Payment.Method,
			Status:        string(detail.Payment.Status),
			AmountCents:   detail.Payment.AmountCents,
			Amount:        domain.FormatCents(detail.Payment.AmountCents),
			TransactionID: detail.Payment.TransactionID,
		},
	}
	for _, item := range detail.Items {
		lineTotal := item.PriceAtPurchaseCents * item.Quantity
		payload.Items = append(payload.Items, orderItemPayload{
			ProductName:    item.ProductName,
			VariantName:    item.VariantName,
			SKU:            item.SKU,
			ImageURL:       item.ImageURL,
			Quantity:       item.Quantity,
			UnitPriceCents: item.PriceAtPurchaseCents,
			UnitPrice:      domain.FormatCents(item.PriceAtPurchaseCents),
			LineTotalCents: lineTotal,
			LineTotal:      domain.FormatCents(lineTotal),
		})
	}
	return payload
}

func addressResponse(addr domain.Address) addressPayload {
	return addressPayload{
		Name:       addr.Name,
		Line1:      addr.Line1,
		Line2:      addr.Line2,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
	}
}

// GetBySession handles GET /api/orders?session_id=... — the success
// page polls this after the hosted checkout redirect. When the webhook
// has not landed yet, the handler materializes the order from the
// session itself; a session whose payment is still pending yields
// {"order": null} so the client keeps polling.
func (h *OrdersHandler) GetBySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "orders.get_by_session", "session_id is required"))
		return
	}

	detail, err := h.orders.FindOrder(ctx, sessionID)
	if err == nil {
		respondJSON(w, http.StatusOK, orderEnvelope{Order: orderResponse(detail)})
		return
	}
	if domain.ErrorCode(err) != domain.ENOTFOUND {
		handler.ErrorResponse(w, r, err)
		return
	}

	// Lookup missed: the webhook may simply not have arrived yet.
	detail, err = h.orders.CreateOrderFromSession(ctx, sessionID, nil)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if detail == nil {
		// Payment still pending at the provider.
		respondJSON(w, http.StatusOK, orderEnvelope{Order: nil})
		return
	}

	if m := telemetry.Business; m != nil {
		m.OrdersCreated.WithLabelValues("poll").Inc()
		m.OrderValueCents.Observe(float64(detail.Order.TotalCents))
	}

	respondJSON(w, http.StatusOK, orderEnvelope{Order: orderResponse(detail)})
}
