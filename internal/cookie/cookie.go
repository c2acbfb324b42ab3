// Package cookie centralizes the session cookies the storefront sets.
// Both the guest and the signed-in cookie go through here so the
// security attributes stay consistent.
package cookie

import (
	"net/http"
	"time"

	"github.com/stridewear/stride/internal/service"
)

// Cookie names.
const (
	// GuestSession carries the guest session token (a UUID).
	GuestSession = "guest_session"
	// UserSession carries the opaque signed-in session token.
	UserSession = "user_session"
)

// Config holds cookie security configuration.
type Config struct {
	// Secure requires HTTPS for cookie transmission.
	// Should be true in production, false in development.
	Secure bool
}

// NewConfig creates a new cookie configuration.
func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// SetGuestSession writes the guest session cookie. Lifetime matches the
// server-side session TTL so the cookie and the row expire together.
func (c *Config) SetGuestSession(w http.ResponseWriter, token string) {
	c.set(w, GuestSession, token, int(service.GuestSessionTTL/time.Second))
}

// SetUserSession writes the signed-in session cookie.
func (c *Config) SetUserSession(w http.ResponseWriter, token string) {
	c.set(w, UserSession, token, int(service.UserSessionTTL/time.Second))
}

// ClearGuestSession removes the guest session cookie, typically after a
// sign-in merges the guest cart away.
func (c *Config) ClearGuestSession(w http.ResponseWriter) {
	c.clear(w, GuestSession)
}

// ClearUserSession removes the signed-in session cookie.
func (c *Config) ClearUserSession(w http.ResponseWriter) {
	c.clear(w, UserSession)
}

func (c *Config) set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *Config) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
