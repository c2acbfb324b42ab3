package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// USER / GUEST DOMAIN TYPES
// =============================================================================

// UserStatus represents the status of a user account.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	// UserStatusGuest marks accounts materialized from a guest checkout
	// (created from the payment session's customer email, no password).
	UserStatusGuest  UserStatus = "guest"
	UserStatusClosed UserStatus = "closed"
)

// User authentication errors.
var (
	ErrUserNotFound       = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrEmailTaken         = &Error{Code: ECONFLICT, Message: "An account with this email already exists"}
	ErrInvalidCredentials = &Error{Code: EUNAUTHORIZED, Message: "Invalid email or password"}
	ErrGuestNotFound      = &Error{Code: ENOTFOUND, Message: "Guest session not found"}
)

// User represents a user account row.
type User struct {
	ID           pgtype.UUID
	Email        string
	PasswordHash pgtype.Text
	FirstName    pgtype.Text
	LastName     pgtype.Text
	Status       UserStatus
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

// FullName returns the user's full name.
func (u *User) FullName() string {
	if u.FirstName.Valid && u.LastName.Valid {
		return u.FirstName.String + " " + u.LastName.String
	} else if u.FirstName.Valid {
		return u.FirstName.String
	} else if u.LastName.Valid {
		return u.LastName.String
	}
	return ""
}

// GuestSession represents an anonymous shopper's session row. Token is
// the opaque UUID carried by the guest cookie.
type GuestSession struct {
	ID        pgtype.UUID
	Token     pgtype.UUID
	CreatedAt pgtype.Timestamptz
	ExpiresAt pgtype.Timestamptz
}

// Expired reports whether the session is past its expiry as of now.
func (g *GuestSession) Expired(now time.Time) bool {
	return g.ExpiresAt.Valid && !now.Before(g.ExpiresAt.Time)
}

// SessionData is the payload stored with a user session token.
type SessionData struct {
	UserID string `json:"user_id"`
}

// =============================================================================
// SERVICE INTERFACES
// =============================================================================

// AccountService provides authentication and registration. Sign-in and
// sign-up are the cart merge trigger points: implementations fold a
// pending guest cart into the user's cart on success.
type AccountService interface {
	// Register creates a new user account and a session for it.
	// A guest identity's cart is merged into the new account's cart.
	Register(ctx context.Context, params RegisterParams) (*User, string, error)

	// Login verifies credentials and returns the user and a new session
	// token. A guest identity's cart is merged into the user's cart.
	Login(ctx context.Context, params LoginParams) (*User, string, error)

	// Logout deletes the session for the token.
	Logout(ctx context.Context, token string) error

	// UserBySessionToken resolves a session token to its user.
	// Expired or unknown tokens return ErrUserNotFound.
	UserBySessionToken(ctx context.Context, token string) (*User, error)
}

// RegisterParams carries sign-up input. Guest, when valid, names the
// guest session whose cart is merged after the account is created.
type RegisterParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Guest     Identity
}

// LoginParams carries sign-in input.
type LoginParams struct {
	Email    string
	Password string
	Guest    Identity
}

// SessionResolver resolves request cookies to a shopper identity and
// provisions guest sessions on demand.
type SessionResolver interface {
	// Resolve maps session tokens to an identity. A valid user token
	// wins over a guest token. Expired or unknown tokens resolve to
	// anonymous.
	Resolve(ctx context.Context, userToken, guestToken string) (Identity, error)

	// EnsureGuest returns the guest session for the token, creating a
	// fresh session when the token is empty, unknown, or expired. The
	// second result reports whether a new session was created (and a
	// new cookie must be written).
	EnsureGuest(ctx context.Context, guestToken string) (*GuestSession, bool, error)
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// UserStore is the persistence interface for users and their sessions.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, status UserStatus) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateSession stores an opaque session token for the user.
	CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	// GetUserBySessionToken resolves an unexpired token to its user.
	GetUserBySessionToken(ctx context.Context, token string) (*User, error)
	DeleteSession(ctx context.Context, token string) error
}

// GuestStore is the persistence interface for guest sessions.
type GuestStore interface {
	// CreateGuestSession inserts a session with the given token and expiry.
	CreateGuestSession(ctx context.Context, token uuid.UUID, expiresAt time.Time) (*GuestSession, error)
	// GetGuestSessionByToken returns the session, expired or not, or
	// ErrGuestNotFound.
	GetGuestSessionByToken(ctx context.Context, token uuid.UUID) (*GuestSession, error)
	DeleteGuestSession(ctx context.Context, id uuid.UUID) error
	// DeleteExpiredGuestSessions removes sessions past cutoff, cascading
	// to their carts. Returns the number of sessions removed.
	DeleteExpiredGuestSessions(ctx context.Context, cutoff time.Time) (int64, error)
}
