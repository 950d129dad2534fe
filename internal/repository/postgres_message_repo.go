package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// PostgresMessageRepo はPostgreSQLを使用したメッセージリポジトリ。
type PostgresMessageRepo struct {
	db *sql.DB
}

// NewPostgresMessageRepo はPostgresMessageRepoを生成する。
func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Create はメッセージを作成する。
func (r *PostgresMessageRepo) Create(ctx context.Context, message *model.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, tree_id, sender, content, color, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		message.ID, message.TreeID, message.Sender, message.Content, string(message.Color), message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// FindByID は指定IDのメッセージを取得する。見つからない場合はnilを返す。
func (r *PostgresMessageRepo) FindByID(ctx context.Context, id string) (*model.Message, error) {
	message := &model.Message{}
	var color string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tree_id, sender, content, color, created_at FROM messages WHERE id = $1`,
		id,
	).Scan(&message.ID, &message.TreeID, &message.Sender, &message.Content, &color, &message.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find message by ID: %w", err)
	}

	message.Color = model.ParseColor(color)
	return message, nil
}

// ListByTreeID はツリーのメッセージ一覧を作成日時の降順で返す。
func (r *PostgresMessageRepo) ListByTreeID(ctx context.Context, treeID string) ([]*model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tree_id, sender, content, color, created_at FROM messages
		 WHERE tree_id = $1
		 ORDER BY created_at DESC`,
		treeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages by tree: %w", err)
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		message := &model.Message{}
		var color string
		if err := rows.Scan(&message.ID, &message.TreeID, &message.Sender, &message.Content, &color, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		message.Color = model.ParseColor(color)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate message rows: %w", err)
	}

	return messages, nil
}

// DeleteByID は指定IDのメッセージを削除する。
// 削除された場合はtrueを、該当行がなかった場合はfalseを返す。
func (r *PostgresMessageRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete message: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ MessageRepository = (*PostgresMessageRepo)(nil)
