package routes

import (
	"github.com/stridewear/stride/internal/middleware"
	"github.com/stridewear/stride/internal/router"
)

// RegisterAPIRoutes registers the JSON storefront API.
//
// Cart mutations create a guest session for anonymous visitors; reads
// never do. Auth endpoints get a stricter rate limit than the rest of
// the API since they take credentials.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	// Cart
	r.Get("/api/cart", deps.CartHandler.Get)
	r.Delete("/api/cart", deps.CartHandler.Clear)
	r.Post("/api/cart/items", deps.CartHandler.AddItem)
	r.Patch("/api/cart/items/{variantID}", deps.CartHandler.UpdateItem)
	r.Delete("/api/cart/items/{variantID}", deps.CartHandler.RemoveItem)

	// Checkout
	r.Post("/api/checkout", deps.CheckoutHandler.Start)

	// Orders (success-page poll)
	r.Get("/api/orders", deps.OrdersHandler.GetBySession)

	// Auth
	authLimit := middleware.RateLimit(middleware.StrictRateLimiterConfig())
	r.Post("/api/auth/signup", deps.AuthHandler.Signup, authLimit)
	r.Post("/api/auth/login", deps.AuthHandler.Login, authLimit)
	r.Post("/api/auth/logout", deps.AuthHandler.Logout)
	r.Get("/api/auth/me", deps.AuthHandler.Me, middleware.RequireUser)
}
