package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

type commentRepo struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(pool *pgxpool.Pool) output.CommentRepository {
	return &commentRepo{pool: pool}
}

func (r *commentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO node_comment (node_id, user_email, created_at, updated_at, content)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		comment.NodeID, comment.UserEmail, comment.CreatedAt, comment.UpdatedAt, comment.Content,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *commentRepo) ListByNode(ctx context.Context, nodeID uuid.UUID) ([]*domain.Comment, error) {
	query := `
		SELECT id, node_id, user_email, created_at, updated_at, content
		FROM node_comment
		WHERE node_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []*domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.NodeID, &c.UserEmail, &c.CreatedAt, &c.UpdatedAt, &c.Content); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *commentRepo) Update(ctx context.Context, id int64, content string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE node_comment SET content=$1, updated_at=NOW() WHERE id=$2`, content, id)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM node_comment WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}
