package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// --- モック ---

type mockAccountRepo struct {
	createFn         func(ctx context.Context, account *model.Account) error
	findByIDFn       func(ctx context.Context, id string) (*model.Account, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.Account, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}
func (m *mockAccountRepo) FindByID(ctx context.Context, id string) (*model.Account, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockAccountRepo) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

type mockSessionRepo struct {
	createFn     func(ctx context.Context, session *model.Session) error
	findByIDFn   func(ctx context.Context, id string) (*model.Session, error)
	deleteByIDFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, session)
	}
	return nil
}
func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func newTestService(accountRepo *mockAccountRepo, sessionRepo *mockSessionRepo) *Service {
	return NewService(accountRepo, sessionRepo, ServiceConfig{SessionMaxAge: 3600})
}

// --- テスト ---

// Signupがアカウントとセッションを作成し、パスワードをハッシュ化することを検証
func TestService_Signup_Success(t *testing.T) {
	var created *model.Account
	accountRepo := &mockAccountRepo{
		createFn: func(ctx context.Context, account *model.Account) error {
			created = account
			return nil
		},
	}
	sessionRepo := &mockSessionRepo{}

	svc := newTestService(accountRepo, sessionRepo)

	account, session, err := svc.Signup(context.Background(), "nalin", "secretpass")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if account.Username != "nalin" {
		t.Errorf("username = %q", account.Username)
	}
	if session == nil || session.AccountID != account.ID {
		t.Errorf("session not bound to account: %+v", session)
	}
	if created.PasswordHash == "secretpass" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secretpass")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
}

// 既存ユーザー名でのSignupがUSERNAME_TAKENになることを検証
func TestService_Signup_UsernameTaken(t *testing.T) {
	accountRepo := &mockAccountRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{ID: "a-1", Username: username}, nil
		},
	}

	svc := newTestService(accountRepo, &mockSessionRepo{})

	_, _, err := svc.Signup(context.Background(), "nalin", "secretpass")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUsernameTaken {
		t.Errorf("expected USERNAME_TAKEN, got %v", err)
	}
}

// 空のユーザー名・パスワードが拒否されることを検証
func TestService_Signup_EmptyInput(t *testing.T) {
	svc := newTestService(&mockAccountRepo{}, &mockSessionRepo{})

	cases := []struct{ username, password string }{
		{"", "secretpass"},
		{"   ", "secretpass"},
		{"nalin", ""},
	}
	for _, c := range cases {
		if _, _, err := svc.Signup(context.Background(), c.username, c.password); err == nil {
			t.Errorf("Signup(%q, %q): expected error", c.username, c.password)
		}
	}
}

// 正しい認証情報でのLoginがセッションを発行することを検証
func TestService_Login_Success(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secretpass"), bcrypt.MinCost)
	accountRepo := &mockAccountRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{ID: "a-1", Username: username, PasswordHash: string(hash)}, nil
		},
	}
	sessionCreated := false
	sessionRepo := &mockSessionRepo{
		createFn: func(ctx context.Context, session *model.Session) error {
			sessionCreated = true
			return nil
		},
	}

	svc := newTestService(accountRepo, sessionRepo)

	account, session, err := svc.Login(context.Background(), "nalin", "secretpass")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if account.ID != "a-1" {
		t.Errorf("account ID = %q", account.ID)
	}
	if session == nil || !sessionCreated {
		t.Error("expected session to be created")
	}
}

// 不明ユーザー・パスワード不一致のどちらでも同じAUTH_FAILEDになることを検証
func TestService_Login_Failure(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secretpass"), bcrypt.MinCost)

	// 不明ユーザー
	svc := newTestService(&mockAccountRepo{}, &mockSessionRepo{})
	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("unknown user: expected AUTH_FAILED, got %v", err)
	}

	// パスワード不一致
	svc = newTestService(&mockAccountRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Account, error) {
			return &model.Account{ID: "a-1", Username: username, PasswordHash: string(hash)}, nil
		},
	}, &mockSessionRepo{})
	_, _, err = svc.Login(context.Background(), "nalin", "wrongpass")
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthFailed {
		t.Errorf("wrong password: expected AUTH_FAILED, got %v", err)
	}
}

// Logoutがセッションを削除することを検証
func TestService_Logout(t *testing.T) {
	deleted := ""
	sessionRepo := &mockSessionRepo{
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	svc := newTestService(&mockAccountRepo{}, sessionRepo)

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if deleted != "sess-1" {
		t.Errorf("deleted session = %q", deleted)
	}

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Error("expected error for empty session ID")
	}
}

// CurrentAccountがセッション経由でアカウントを解決することを検証
func TestService_CurrentAccount(t *testing.T) {
	sessionRepo := &mockSessionRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			if id == "sess-1" {
				return &model.Session{ID: id, AccountID: "a-1"}, nil
			}
			return nil, nil
		},
	}
	accountRepo := &mockAccountRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Account, error) {
			return &model.Account{ID: id, Username: "nalin"}, nil
		},
	}

	svc := newTestService(accountRepo, sessionRepo)

	account, err := svc.CurrentAccount(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("CurrentAccount returned error: %v", err)
	}
	if account == nil || account.ID != "a-1" {
		t.Errorf("account = %+v", account)
	}

	// 無効セッションはnil
	account, err = svc.CurrentAccount(context.Background(), "expired")
	if err != nil {
		t.Fatalf("CurrentAccount returned error: %v", err)
	}
	if account != nil {
		t.Errorf("expected nil account for invalid session, got %+v", account)
	}
}
