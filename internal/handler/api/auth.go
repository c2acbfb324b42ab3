package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stridewear/stride/internal/cookie"
	"github.com/stridewear/stride/internal/domain"
	"github.com/stridewear/stride/internal/handler"
	"github.com/stridewear/stride/internal/telemetry"
)

// AuthHandler handles signup, login and logout. Sign-in and sign-up are
// the cart merge trigger points: the resolved guest identity rides along
// so the account service can fold a pending guest cart in.
type AuthHandler struct {
	accounts domain.AccountService
	cookies  *cookie.Config
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts domain.AccountService, cookies *cookie.Config, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		cookies:  cookies,
		validate: newValidator(),
		logger:   logger,
	}
}

type signupRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type authPayload struct {
	User userPayload `json:"user"`
}

func userResponse(user *domain.User) userPayload {
	return userPayload{
		ID:        uuid.UUID(user.ID.Bytes).String(),
		Email:     user.Email,
		FirstName: user.FirstName.String,
		LastName:  user.LastName.String,
	}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req signupRequest
	if err := decodeAndValidate(r, h.validate, "auth.signup", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	user, token, err := h.accounts.Register(ctx, domain.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Guest:     domain.IdentityFromContext(ctx),
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.logger.Info("user registered", slog.String("email", user.Email))
	if m := telemetry.Business; m != nil {
		m.Signups.Inc()
	}

	// The guest cart, if any, was merged during registration; the
	// guest cookie is stale now.
	h.cookies.SetUserSession(w, token)
	h.cookies.ClearGuestSession(w)

	respondJSON(w, http.StatusCreated, authPayload{User: userResponse(user)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := decodeAndValidate(r, h.validate, "auth.login", &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	user, token, err := h.accounts.Login(ctx, domain.LoginParams{
		Email:    req.Email,
		Password: req.Password,
		Guest:    domain.IdentityFromContext(ctx),
	})
	if err != nil {
		if m := telemetry.Business; m != nil {
			m.LoginFailed.Inc()
		}
		handler.ErrorResponse(w, r, err)
		return
	}

	if m := telemetry.Business; m != nil {
		m.Logins.Inc()
	}
	h.cookies.SetUserSession(w, token)
	h.cookies.ClearGuestSession(w)

	respondJSON(w, http.StatusOK, authPayload{User: userResponse(user)})
}

// Me handles GET /api/auth/me. The route sits behind RequireUser, so a
// missing or stale session never reaches here.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.accounts.UserBySessionToken(ctx, cookie.Get(r, cookie.UserSession))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, authPayload{User: userResponse(user)})
}

// Logout handles POST /api/auth/logout. Logging out with no session is
// a success.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.accounts.Logout(ctx, cookie.Get(r, cookie.UserSession)); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.ClearUserSession(w)
	w.WriteHeader(http.StatusNoContent)
}
