package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/stridewear/stride/internal/auth"
	"github.com/stridewear/stride/internal/domain"
)

// UserSessionTTL is how long a signed-in session (and its cookie) lives.
const UserSessionTTL = 30 * 24 * time.Hour

// accountService implements domain.AccountService.
type accountService struct {
	users  domain.UserStore
	carts  domain.CartService
	logger *slog.Logger
	now    func() time.Time
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(users domain.UserStore, carts domain.CartService, logger *slog.Logger) domain.AccountService {
	return &accountService{
		users:  users,
		carts:  carts,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates an account and signs it in. When the shopper was
// browsing as a guest, their cart follows them into the new account.
func (s *accountService) Register(ctx context.Context, params domain.RegisterParams) (*domain.User, string, error) {
	email := normalizeEmail(params.Email)
	if email == "" {
		return nil, "", domain.Errorf(domain.EINVALID, "account.register", "Email is required")
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			return nil, "", domain.Errorf(domain.EINVALID, "account.register", "Password must be at least %d characters", auth.MinPasswordLength)
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, "", domain.Errorf(domain.EINVALID, "account.register", "Password must be at most 72 characters")
		}
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, hash, params.FirstName, params.LastName, domain.UserStatusActive)
	if err != nil {
		return nil, "", err
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.adoptGuestCart(ctx, params.Guest, user); err != nil {
		return nil, "", err
	}

	s.logger.Info("registered user", slog.String("user_id", uid(user.ID).String()))
	return user, token, nil
}

// Login verifies credentials and signs the user in. Guest accounts
// created by checkout have no password and cannot sign in until they
// register.
func (s *accountService) Login(ctx context.Context, params domain.LoginParams) (*domain.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.PasswordHash.Valid || user.PasswordHash.String == "" {
		return nil, "", ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(params.Password, user.PasswordHash.String); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}

	token, err := s.startSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if err := s.adoptGuestCart(ctx, params.Guest, user); err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (s *accountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.users.DeleteSession(ctx, token)
}

// UserBySessionToken resolves a session token to its user.
func (s *accountService) UserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.users.GetUserBySessionToken(ctx, token)
}

// startSession mints a session token and persists it for the user.
func (s *accountService) startSession(ctx context.Context, user *domain.User) (string, error) {
	token, err := GenerateSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	if err := s.users.CreateSession(ctx, token, uid(user.ID), s.now().Add(UserSessionTTL)); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// adoptGuestCart merges the guest identity's cart into the user's cart.
// Sign-in is already committed at this point, so the merge failing
// fails the whole operation rather than silently dropping cart lines.
func (s *accountService) adoptGuestCart(ctx context.Context, guest domain.Identity, user *domain.User) error {
	guestSessionID, ok := guest.GuestSessionID()
	if !ok {
		return nil
	}
	if err := s.carts.MergeGuestCart(ctx, guestSessionID, uid(user.ID)); err != nil {
		return fmt.Errorf("failed to merge guest cart: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
