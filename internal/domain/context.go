// Package domain provides core business types, coded errors, and request
// context helpers for the Stride storefront backend.
//
// Context helpers centralize request-scoped data access so handlers and
// services share one way of reading the resolved shopper identity.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// identityContextKey stores the resolved shopper identity in context.
	identityContextKey contextKey = iota

	// userContextKey stores user information in context.
	userContextKey

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// ContextUser is the minimal user struct stored in request context.
// The full record can be fetched from the database when needed.
type ContextUser struct {
	ID    uuid.UUID
	Email string
}

// --- Identity Context Helpers ---

// NewContextWithIdentity returns a new context with the identity attached.
func NewContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the resolved identity from context.
// Returns an anonymous identity if none is present.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityContextKey).(Identity); ok {
		return id
	}
	return AnonymousIdentity()
}

// --- User Context Helpers ---

// NewContextWithUser returns a new context with the user attached.
func NewContextWithUser(ctx context.Context, user *ContextUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the user from context.
// Returns nil if no user is present.
func UserFromContext(ctx context.Context) *ContextUser {
	user, _ := ctx.Value(userContextKey).(*ContextUser)
	return user
}

// UserIDFromContext retrieves the user ID from context.
// Returns uuid.Nil if no user is present.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if user := UserFromContext(ctx); user != nil {
		return user.ID
	}
	return uuid.Nil
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns an empty string if none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}
