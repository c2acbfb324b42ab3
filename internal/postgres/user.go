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

// UserStore implements domain.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that UserStore implements domain.UserStore.
var _ domain.UserStore = (*UserStore)(nil)

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, status, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user account. Empty passwordHash, firstName and
// lastName insert as NULL (guest accounts materialized at checkout).
func (s *UserStore) CreateUser(ctx context.Context, email, passwordHash, firstName, lastName string, status domain.UserStatus) (*domain.User, error) {
	const q = `
		INSERT INTO users (email, password_hash, first_name, last_name, status)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING ` + userColumns

	user, err := scanUser(s.pool.QueryRow(ctx, q, email, passwordHash, firstName, lastName, status))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return nil, domain.ErrEmailTaken
		}
		return nil, domain.Internal(err, "user.create", "failed to create user")
	}
	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (s *UserStore) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, q, pgUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.getByID", "failed to get user")
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(s.pool.QueryRow(ctx, q, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.getByEmail", "failed to get user")
	}
	return user, nil
}

// CreateSession stores an opaque session token for the user.
func (s *UserStore) CreateSession(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error {
	const q = `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`

	if _, err := s.pool.Exec(ctx, q, token, pgUUID(userID), expiresAt); err != nil {
		return domain.Internal(err, "user.createSession", "failed to create session")
	}
	return nil
}

// GetUserBySessionToken resolves an unexpired session token to its user.
// Expired or unknown tokens return domain.ErrUserNotFound.
func (s *UserStore) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	const q = `
		SELECT u.id, u.email, u.password_hash, u.first_name, u.last_name,
		       u.status, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > now()`

	user, err := scanUser(s.pool.QueryRow(ctx, q, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.Internal(err, "user.getBySession", "failed to get user by session")
	}
	return user, nil
}

// DeleteSession removes a session token. Unknown tokens are a no-op.
func (s *UserStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return domain.Internal(err, "user.deleteSession", "failed to delete session")
	}
	return nil
}
