package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/cookie"
	"github.com/stridewear/stride/internal/domain"
)

type contextKey string

// WithIdentity resolves the session cookies to a shopper identity and
// stores it in the request context. A valid signed-in session wins over
// a guest cookie; failed lookups degrade to anonymous rather than
// failing the request. Reads never create sessions.
func WithIdentity(accounts domain.AccountService, resolver domain.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			userToken := cookie.Get(r, cookie.UserSession)
			guestToken := cookie.Get(r, cookie.GuestSession)

			if userToken != "" {
				user, err := accounts.UserBySessionToken(ctx, userToken)
				if err == nil {
					userID := uuid.UUID(user.ID.Bytes)
					ctx = domain.NewContextWithIdentity(ctx, domain.UserIdentity(userID))
					ctx = domain.NewContextWithUser(ctx, &domain.ContextUser{
						ID:    userID,
						Email: user.Email,
					})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			identity, err := resolver.Resolve(ctx, "", guestToken)
			if err != nil {
				GetLogger(ctx).Warn("identity resolution failed",
					slog.String("error", err.Error()))
				identity = domain.AnonymousIdentity()
			}

			ctx = domain.NewContextWithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests without a signed-in identity.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := domain.IdentityFromContext(r.Context())
		if _, ok := identity.UserID(); !ok {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
