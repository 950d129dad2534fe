// Package auth はアカウント認証とセッション管理を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nalindotexe/deco-my-tree/internal/model"
	"github.com/nalindotexe/deco-my-tree/internal/repository"
)

// maxUsernameLength はユーザー名の最大文字数。
const maxUsernameLength = 64

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// Signup は新規アカウントを作成し、セッションを発行する。
// ユーザー名が既に使われている場合はUSERNAME_TAKENを返す。
// パスワードはbcryptでハッシュ化して保存する。オリジナルは平文保存だったが、
// 移植にあたり当然ハッシュ化する。
func (s *Service) Signup(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLength || password == "" {
		return nil, nil, model.NewAuthFailedError()
	}

	existing, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewUsernameTakenError(username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("account created",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)

	return account, session, nil
}

// Login はユーザー名とパスワードを検証し、セッションを発行する。
// アカウント不明・パスワード不一致のどちらでもAUTH_FAILEDを返す。
func (s *Service) Login(ctx context.Context, username, password string) (*model.Account, *model.Session, error) {
	account, err := s.accountRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil {
		return nil, nil, model.NewAuthFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, model.NewAuthFailedError()
	}

	session, err := s.createSession(ctx, account.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("account logged in",
		slog.String("account_id", account.ID),
	)

	return account, session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("account logged out", slog.String("session_id", sessionID))
	return nil
}

// CurrentAccount はセッションIDから現在のアカウントを取得する。
// セッションが無効または期限切れの場合はnilを返す。
func (s *Service) CurrentAccount(ctx context.Context, sessionID string) (*model.Account, error) {
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	account, err := s.accountRepo.FindByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// createSession は新しいセッションを作成して保存する。
func (s *Service) createSession(ctx context.Context, accountID string) (*model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.New().String(),
		AccountID: accountID,
		ExpiresAt: now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}
