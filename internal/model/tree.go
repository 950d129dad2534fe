// Package model はドメインモデルを定義する。
package model

import "time"

// DefaultTheme はツリー作成時に設定されるテーマ。
const DefaultTheme = "classic"

// Tree は飾り付け対象のバーチャルツリーを表す。
// OwnerID は作成後に変更されない。所有者判定（viewer == OwnerID）が
// このシステム唯一の認可チェックとなる。
type Tree struct {
	ID        string
	OwnerID   string
	Name      string
	PIN       string // バックアップアクセス用の4桁数字コード
	Theme     string
	CreatedAt time.Time
}
