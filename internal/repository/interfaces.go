// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// AccountRepository はアカウントデータの永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成する。
	Create(ctx context.Context, account *model.Account) error

	// FindByID は指定IDのアカウントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Account, error)

	// FindByUsername はユーザー名でアカウントを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Account, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 見つからない場合および期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れセッションを一括削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TreeRepository はツリーデータの永続化インターフェース。
type TreeRepository interface {
	// Create はツリーを作成する。
	Create(ctx context.Context, tree *model.Tree) error

	// FindByID は指定IDのツリーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tree, error)

	// ListByOwnerID は所有者のツリー一覧を作成日時の降順で返す。
	ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Tree, error)
}

// MessageRepository はメッセージデータの永続化インターフェース。
type MessageRepository interface {
	// Create はメッセージを作成する。
	Create(ctx context.Context, message *model.Message) error

	// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Message, error)

	// ListByTreeID はツリーのメッセージ一覧を作成日時の降順で返す。
	ListByTreeID(ctx context.Context, treeID string) ([]*model.Message, error)

	// DeleteByID は指定IDのメッセージを削除する。
	// 削除された場合はtrueを、該当行がなかった場合はfalseを返す。
	DeleteByID(ctx context.Context, id string) (bool, error)
}
