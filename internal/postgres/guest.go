package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stridewear/stride/internal/domain"
)

// GuestStore implements domain.GuestStore using PostgreSQL.
type GuestStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that GuestStore implements domain.GuestStore.
var _ domain.GuestStore = (*GuestStore)(nil)

// NewGuestStore creates a new PostgreSQL-backed guest session store.
func NewGuestStore(pool *pgxpool.Pool) *GuestStore {
	return &GuestStore{pool: pool}
}

const guestColumns = `id, token, created_at, expires_at`

func scanGuest(row pgx.Row) (*domain.GuestSession, error) {
	var g domain.GuestSession
	if err := row.Scan(&g.ID, &g.Token, &g.CreatedAt, &g.ExpiresAt); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGuestSession inserts a session with the given token and expiry.
func (s *GuestStore) CreateGuestSession(ctx context.Context, token uuid.UUID, expiresAt time.Time) (*domain.GuestSession, error) {
	const q = `
		INSERT INTO guest_sessions (token, expires_at)
		VALUES ($1, $2)
		RETURNING ` + guestColumns

	g, err := scanGuest(s.pool.QueryRow(ctx, q, pgUUID(token), expiresAt))
	if err != nil {
		return nil, domain.Internal(err, "guest.create", "failed to create guest session")
	}
	return g, nil
}

// GetGuestSessionByToken returns the session for the cookie token,
// expired or not. Expiry policy belongs to the resolver.
func (s *GuestStore) GetGuestSessionByToken(ctx context.Context, token uuid.UUID) (*domain.GuestSession, error) {
	const q = `SELECT ` + guestColumns + ` FROM guest_sessions WHERE token = $1`

	g, err := scanGuest(s.pool.QueryRow(ctx, q, pgUUID(token)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGuestNotFound
		}
		return nil, domain.Internal(err, "guest.getByToken", "failed to get guest session")
	}
	return g, nil
}

// DeleteGuestSession removes a session row, cascading to its cart.
func (s *GuestStore) DeleteGuestSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM guest_sessions WHERE id = $1`, pgUUID(id)); err != nil {
		return domain.Internal(err, "guest.delete", "failed to delete guest session")
	}
	return nil
}

// DeleteExpiredGuestSessions removes sessions expired as of cutoff.
// Carts and cart items follow via ON DELETE CASCADE.
func (s *GuestStore) DeleteExpiredGuestSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM guest_sessions WHERE expires_at <= $1`, cutoff)
	if err != nil {
		return 0, domain.Internal(err, "guest.deleteExpired", "failed to delete expired guest sessions")
	}
	return tag.RowsAffected(), nil
}
