// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, tree, message, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthFailed      = "AUTH_FAILED"
	ErrCodeUsernameTaken   = "USERNAME_TAKEN"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTreeNotFound    = "TREE_NOT_FOUND"
	ErrCodeMessageNotFound = "MESSAGE_NOT_FOUND"
	ErrCodeDeleteForbidden = "DELETE_FORBIDDEN"
	ErrCodeInvalidTreeName = "INVALID_TREE_NAME"
	ErrCodeInvalidPIN      = "INVALID_PIN"
	ErrCodeEmptyMessage    = "EMPTY_MESSAGE"
	ErrCodeMessageTooLong  = "MESSAGE_TOO_LONG"
)

// NewAuthFailedError は認証失敗エラーを生成する。
// ユーザー名不明・パスワード不一致のどちらでも同じエラーを返し、
// アカウントの存在を推測されないようにする。
func NewAuthFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailed,
		Message:  "Invalid credentials.",
		Category: "auth",
		Action:   "Check your username and password and try again.",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("Username already taken: %s", username),
		Category: "auth",
		Action:   "Choose a different username.",
	}
}

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Log in and try again.",
	}
}

// NewTreeNotFoundError はツリー未検出エラーを生成する。
func NewTreeNotFoundError(treeID string) *APIError {
	return &APIError{
		Code:     ErrCodeTreeNotFound,
		Message:  fmt.Sprintf("Tree not found: %s", treeID),
		Category: "tree",
		Action:   "Check the shared link. The tree may have been removed.",
	}
}

// NewMessageNotFoundError はメッセージ未検出エラーを生成する。
func NewMessageNotFoundError(messageID string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("Message not found: %s", messageID),
		Category: "message",
		Action:   "The ornament may have already been removed.",
	}
}

// NewDeleteForbiddenError は削除権限エラーを生成する。
// メッセージの削除はツリーの所有者だけに許可される。
func NewDeleteForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeDeleteForbidden,
		Message:  "Only the tree owner can delete messages.",
		Category: "message",
		Action:   "Log in as the tree owner to delete ornaments.",
	}
}

// NewInvalidTreeNameError はツリー名バリデーションエラーを生成する。
func NewInvalidTreeNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidTreeName,
		Message:  "Tree name is required.",
		Category: "validation",
		Action:   "Enter a non-empty tree name.",
	}
}

// NewInvalidPINError はPINバリデーションエラーを生成する。
func NewInvalidPINError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPIN,
		Message:  "PIN must be exactly 4 digits.",
		Category: "validation",
		Action:   "Enter a 4-digit numeric PIN.",
	}
}

// NewEmptyMessageError は空メッセージエラーを生成する。
func NewEmptyMessageError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyMessage,
		Message:  "Message content is required.",
		Category: "validation",
		Action:   "Write a message before hanging it on the tree.",
	}
}

// NewMessageTooLongError は文字数超過エラーを生成する。
func NewMessageTooLongError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeMessageTooLong,
		Message:  fmt.Sprintf("Message exceeds the %d character limit.", limit),
		Category: "validation",
		Action:   "Shorten the message and try again.",
	}
}
