package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/domain"
)

// GuestSessionTTL is how long a guest session (and its cookie) lives.
const GuestSessionTTL = 7 * 24 * time.Hour

// GenerateSessionID generates a cryptographically secure session ID
// Uses 32 bytes of random data encoded as base64 URL-safe string
func GenerateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// SessionService resolves cookie tokens to shopper identities and
// provisions guest sessions lazily on the first cart mutation.
type SessionService struct {
	users  domain.UserStore
	guests domain.GuestStore
	logger *slog.Logger
	now    func() time.Time
}

// Compile-time check that SessionService implements domain.SessionResolver.
var _ domain.SessionResolver = (*SessionService)(nil)

// NewSessionService creates the session resolver.
func NewSessionService(users domain.UserStore, guests domain.GuestStore, logger *slog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		guests: guests,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve maps session tokens to an identity. A valid user session wins
// over a guest token; expired or unknown tokens resolve to anonymous.
// Reads never create sessions.
func (s *SessionService) Resolve(ctx context.Context, userToken, guestToken string) (domain.Identity, error) {
	if userToken != "" {
		user, err := s.users.GetUserBySessionToken(ctx, userToken)
		if err == nil {
			return domain.UserIdentity(uid(user.ID)), nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return domain.AnonymousIdentity(), err
		}
	}

	if guestToken != "" {
		token, err := uuid.Parse(guestToken)
		if err != nil {
			// malformed cookie, treat as absent
			return domain.AnonymousIdentity(), nil
		}

		guest, err := s.guests.GetGuestSessionByToken(ctx, token)
		if err != nil {
			if errors.Is(err, domain.ErrGuestNotFound) {
				return domain.AnonymousIdentity(), nil
			}
			return domain.AnonymousIdentity(), err
		}

		if guest.Expired(s.now()) {
			// lazy cleanup; the sweeper handles the rest
			if err := s.guests.DeleteGuestSession(ctx, uid(guest.ID)); err != nil {
				s.logger.Warn("failed to delete expired guest session",
					slog.String("guest_session_id", uid(guest.ID).String()),
					slog.String("error", err.Error()))
			}
			return domain.AnonymousIdentity(), nil
		}

		return domain.GuestIdentity(uid(guest.ID)), nil
	}

	return domain.AnonymousIdentity(), nil
}

// EnsureGuest returns the guest session for the token, creating a fresh
// one when the token is empty, unknown, or expired. The bool result
// reports whether a new session (and cookie) was created.
func (s *SessionService) EnsureGuest(ctx context.Context, guestToken string) (*domain.GuestSession, bool, error) {
	if guestToken != "" {
		if token, err := uuid.Parse(guestToken); err == nil {
			guest, err := s.guests.GetGuestSessionByToken(ctx, token)
			if err == nil && !guest.Expired(s.now()) {
				return guest, false, nil
			}
			if err != nil && !errors.Is(err, domain.ErrGuestNotFound) {
				return nil, false, err
			}
		}
	}

	guest, err := s.guests.CreateGuestSession(ctx, uuid.New(), s.now().Add(GuestSessionTTL))
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("created guest session",
		slog.String("guest_session_id", uid(guest.ID).String()))

	return guest, true, nil
}
