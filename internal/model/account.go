// Package model はドメインモデルを定義する。
package model

import "time"

// Account はサービス利用アカウントを表す。
// ツリーの作成・メッセージの削除にはアカウントが必要。
// ゲスト（未ログイン訪問者）はアカウントを持たずにツリーの閲覧と飾り付けができる。
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session はアカウントのログインセッションを表す。
type Session struct {
	ID        string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}
