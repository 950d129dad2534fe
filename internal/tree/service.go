// Package tree はツリー管理のドメインロジックを提供する。
package tree

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nalindotexe/deco-my-tree/internal/metrics"
	"github.com/nalindotexe/deco-my-tree/internal/model"
	"github.com/nalindotexe/deco-my-tree/internal/repository"
)

// maxNameLength はツリー名の最大文字数。
const maxNameLength = 100

// pinLength はバックアップアクセスPINの桁数。
const pinLength = 4

// Service はツリー管理のサービス層。
type Service struct {
	treeRepo  repository.TreeRepository
	collector metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(treeRepo repository.TreeRepository, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		treeRepo:  treeRepo,
		collector: collector,
	}
}

// CreateTree は新しいツリーを作成する。
// 名前は空白トリム後に非空であること、PINはちょうど4桁の数字であることを要求する。
// OwnerIDは作成後不変で、以後の認可判定すべての基準になる。
func (s *Service) CreateTree(ctx context.Context, ownerID, name, pin string) (*model.Tree, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return nil, model.NewInvalidTreeNameError()
	}
	if !validPIN(pin) {
		return nil, model.NewInvalidPINError()
	}

	tree := &model.Tree{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Name:      name,
		PIN:       pin,
		Theme:     model.DefaultTheme,
		CreatedAt: time.Now(),
	}

	if err := s.treeRepo.Create(ctx, tree); err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}

	s.collector.RecordTreeCreated()
	slog.Info("tree created",
		slog.String("tree_id", tree.ID),
		slog.String("owner_id", ownerID),
	)

	return tree, nil
}

// GetTree は指定IDのツリーを取得する。存在しない場合はTREE_NOT_FOUNDを返す。
func (s *Service) GetTree(ctx context.Context, treeID string) (*model.Tree, error) {
	tree, err := s.treeRepo.FindByID(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("failed to find tree: %w", err)
	}
	if tree == nil {
		return nil, model.NewTreeNotFoundError(treeID)
	}
	return tree, nil
}

// ListByOwner は所有者のツリー一覧を新しい順に返す。
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]*model.Tree, error) {
	trees, err := s.treeRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	return trees, nil
}

// validPIN はPINがちょうど4桁の数字かどうかを返す。
func validPIN(pin string) bool {
	if len(pin) != pinLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
