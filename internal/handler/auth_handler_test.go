package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nalindotexe/deco-my-tree/internal/middleware"
	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn         func(ctx context.Context, username, password string) (*model.Account, *model.Session, error)
	loginFn          func(ctx context.Context, username, password string) (*model.Account, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	currentAccountFn func(ctx context.Context, sessionID string) (*model.Account, error)
}

func (m *mockAuthService) Signup(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, username, password)
	}
	return nil, nil, model.NewAuthFailedError()
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return nil, nil, model.NewAuthFailedError()
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) CurrentAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	if m.currentAccountFn != nil {
		return m.currentAccountFn(ctx, sessionID)
	}
	return nil, nil
}

func testAuthConfig() AuthHandlerConfig {
	return AuthHandlerConfig{
		CookieSecure:  false,
		SessionMaxAge: 86400,
	}
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

// --- テスト ---

func TestAuthHandler_Signup_SetsSessionCookie(t *testing.T) {
	service := &mockAuthService{
		signupFn: func(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
			return &model.Account{ID: "account-1", Username: username},
				&model.Session{ID: "session-1", AccountID: "account-1", ExpiresAt: time.Now().Add(time.Hour)},
				nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"username":"holly","password":"secret"}`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	cookie := sessionCookieFrom(t, resp)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "session-1" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.ID != "account-1" || body.Username != "holly" {
		t.Errorf("body = %+v", body)
	}
}

func TestAuthHandler_Signup_UsernameTaken_Returns409(t *testing.T) {
	service := &mockAuthService{
		signupFn: func(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
			return nil, nil, model.NewUsernameTakenError(username)
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/signup",
		strings.NewReader(`{"username":"holly","password":"secret"}`))
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if w.Result().StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusConflict)
	}
}

func TestAuthHandler_Login_InvalidCredentials_Returns401(t *testing.T) {
	service := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
			return nil, nil, model.NewAuthFailedError()
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"username":"holly","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if sessionCookieFrom(t, resp) != nil {
		t.Error("no session cookie should be set on failed login")
	}
}

func TestAuthHandler_Login_InvalidJSON_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var loggedOutSessionID string
	service := &mockAuthService{
		logoutFn: func(ctx context.Context, sessionID string) error {
			loggedOutSessionID = sessionID
			return nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	w := httptest.NewRecorder()

	h.Logout(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if loggedOutSessionID != "session-1" {
		t.Errorf("logged out session = %q", loggedOutSessionID)
	}

	cookie := sessionCookieFrom(t, resp)
	if cookie == nil {
		t.Fatal("expected session cookie to be cleared")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestAuthHandler_Me_NoSession_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Me_ValidSession_ReturnsAccount(t *testing.T) {
	service := &mockAuthService{
		currentAccountFn: func(ctx context.Context, sessionID string) (*model.Account, error) {
			if sessionID == "session-1" {
				return &model.Account{ID: "account-1", Username: "holly"}, nil
			}
			return nil, nil
		},
	}
	h := NewAuthHandler(service, testAuthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "session-1"})
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Username != "holly" {
		t.Errorf("username = %q", body.Username)
	}
}
