package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stridewear/stride/internal/cookie"
	"github.com/stridewear/stride/internal/domain"
)

func newAuthHandler(accounts *mockAccountService) *AuthHandler {
	return NewAuthHandler(accounts, cookie.NewConfig(false), nil)
}

func makeAPIUser(email string) *domain.User {
	return &domain.User{
		ID:        testPgUUID(uuid.New()),
		Email:     email,
		FirstName: pgtype.Text{String: "Jordan", Valid: true},
		LastName:  pgtype.Text{String: "Miles", Valid: true},
		Status:    domain.UserStatusActive,
	}
}

func findResponseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Signup_CreatesAccountAndSession(t *testing.T) {
	guestID := uuid.New()

	h := newAuthHandler(&mockAccountService{
		registerFunc: func(ctx context.Context, params domain.RegisterParams) (*domain.User, string, error) {
			if params.Email != "jordan@example.com" {
				t.Errorf("expected email jordan@example.com, got %q", params.Email)
			}
			gotGuest, ok := params.Guest.GuestSessionID()
			if !ok || gotGuest != guestID {
				t.Errorf("expected guest identity %v forwarded, got %v", guestID, params.Guest)
			}
			return makeAPIUser(params.Email), "session-token-1", nil
		},
	})

	body := `{"email": "jordan@example.com", "password": "correct horse", "first_name": "Jordan", "last_name": "Miles"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithIdentity(req, domain.GuestIdentity(guestID))
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	userCookie := findResponseCookie(rr, cookie.UserSession)
	if userCookie == nil || userCookie.Value != "session-token-1" {
		t.Errorf("expected user_session cookie with token, got %v", userCookie)
	}
	guestCookie := findResponseCookie(rr, cookie.GuestSession)
	if guestCookie == nil || guestCookie.MaxAge != -1 {
		t.Errorf("expected guest_session cookie cleared, got %v", guestCookie)
	}

	var payload authPayload
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.User.Email != "jordan@example.com" {
		t.Errorf("unexpected user payload: %+v", payload.User)
	}
}

func TestAuthHandler_Signup_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing_email", body: `{"password": "correct horse"}`},
		{name: "bad_email", body: `{"email": "nope", "password": "correct horse"}`},
		{name: "short_password", body: `{"email": "a@b.com", "password": "short"}`},
		{name: "invalid_json", body: `{"email"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(&mockAccountService{})

			req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.Signup(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestAuthHandler_Signup_EmailTaken(t *testing.T) {
	h := newAuthHandler(&mockAccountService{
		registerFunc: func(ctx context.Context, params domain.RegisterParams) (*domain.User, string, error) {
			return nil, "", domain.ErrEmailTaken
		},
	})

	body := `{"email": "jordan@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Signup(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestAuthHandler_Login_SetsSessionClearsGuest(t *testing.T) {
	guestID := uuid.New()

	h := newAuthHandler(&mockAccountService{
		loginFunc: func(ctx context.Context, params domain.LoginParams) (*domain.User, string, error) {
			gotGuest, ok := params.Guest.GuestSessionID()
			if !ok || gotGuest != guestID {
				t.Errorf("expected guest identity %v forwarded, got %v", guestID, params.Guest)
			}
			return makeAPIUser(params.Email), "session-token-2", nil
		},
	})

	body := `{"email": "jordan@example.com", "password": "correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	req = requestWithIdentity(req, domain.GuestIdentity(guestID))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	userCookie := findResponseCookie(rr, cookie.UserSession)
	if userCookie == nil || userCookie.Value != "session-token-2" {
		t.Errorf("expected user_session cookie with token, got %v", userCookie)
	}
	guestCookie := findResponseCookie(rr, cookie.GuestSession)
	if guestCookie == nil || guestCookie.MaxAge != -1 {
		t.Errorf("expected guest_session cookie cleared, got %v", guestCookie)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := newAuthHandler(&mockAccountService{
		loginFunc: func(ctx context.Context, params domain.LoginParams) (*domain.User, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	})

	body := `{"email": "jordan@example.com", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}

	if c := findResponseCookie(rr, cookie.UserSession); c != nil {
		t.Error("failed login must not set a session cookie")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var gotToken string
	h := newAuthHandler(&mockAccountService{
		logoutFunc: func(ctx context.Context, token string) error {
			gotToken = token
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cookie.UserSession, Value: "session-token-3"})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if gotToken != "session-token-3" {
		t.Errorf("expected token session-token-3, got %q", gotToken)
	}

	userCookie := findResponseCookie(rr, cookie.UserSession)
	if userCookie == nil || userCookie.MaxAge != -1 {
		t.Errorf("expected user_session cookie cleared, got %v", userCookie)
	}
}

func TestAuthHandler_Logout_NoSession(t *testing.T) {
	h := newAuthHandler(&mockAccountService{
		logoutFunc: func(ctx context.Context, token string) error {
			if token != "" {
				t.Errorf("expected empty token, got %q", token)
			}
			return nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204, got %d", rr.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := newAuthHandler(&mockAccountService{
		userBySessionTokenFunc: func(ctx context.Context, token string) (*domain.User, error) {
			if token != "session-token-4" {
				t.Errorf("expected token session-token-4, got %q", token)
			}
			return makeAPIUser("jordan@example.com"), nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cookie.UserSession, Value: "session-token-4"})
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload authPayload
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.User.Email != "jordan@example.com" {
		t.Errorf("expected email jordan@example.com, got %q", payload.User.Email)
	}
	if payload.User.FirstName != "Jordan" {
		t.Errorf("expected first name Jordan, got %q", payload.User.FirstName)
	}
}

func TestAuthHandler_Me_StaleSession(t *testing.T) {
	h := newAuthHandler(&mockAccountService{
		userBySessionTokenFunc: func(ctx context.Context, token string) (*domain.User, error) {
			return nil, domain.Unauthorized("auth.me", "Session expired")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cookie.UserSession, Value: "expired-token"})
	rr := httptest.NewRecorder()
	h.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rr.Code)
	}
}
