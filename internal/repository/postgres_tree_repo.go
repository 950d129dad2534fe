package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nalindotexe/deco-my-tree/internal/model"
)

// PostgresTreeRepo はPostgreSQLを使用したツリーリポジトリ。
type PostgresTreeRepo struct {
	db *sql.DB
}

// NewPostgresTreeRepo はPostgresTreeRepoを生成する。
func NewPostgresTreeRepo(db *sql.DB) *PostgresTreeRepo {
	return &PostgresTreeRepo{db: db}
}

// Create はツリーを作成する。
func (r *PostgresTreeRepo) Create(ctx context.Context, tree *model.Tree) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO trees (id, owner_id, name, pin, theme, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tree.ID, tree.OwnerID, tree.Name, tree.PIN, tree.Theme, tree.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tree: %w", err)
	}
	return nil
}

// FindByID は指定IDのツリーを取得する。見つからない場合はnilを返す。
func (r *PostgresTreeRepo) FindByID(ctx context.Context, id string) (*model.Tree, error) {
	tree := &model.Tree{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, pin, theme, created_at FROM trees WHERE id = $1`,
		id,
	).Scan(&tree.ID, &tree.OwnerID, &tree.Name, &tree.PIN, &tree.Theme, &tree.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find tree by ID: %w", err)
	}

	return tree, nil
}

// ListByOwnerID は所有者のツリー一覧を作成日時の降順で返す。
func (r *PostgresTreeRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*model.Tree, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, pin, theme, created_at FROM trees
		 WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trees by owner: %w", err)
	}
	defer rows.Close()

	var trees []*model.Tree
	for rows.Next() {
		tree := &model.Tree{}
		if err := rows.Scan(&tree.ID, &tree.OwnerID, &tree.Name, &tree.PIN, &tree.Theme, &tree.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tree row: %w", err)
		}
		trees = append(trees, tree)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tree rows: %w", err)
	}

	return trees, nil
}

// compile-time interface check
var _ TreeRepository = (*PostgresTreeRepo)(nil)
