package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bulletinboard/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// ListByPost walks the reply tree with a recursive CTE and orders rows by
// their id path. Deleted comments keep their slot but lose author and text.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		WITH RECURSIVE tree AS (
			SELECT c.id, ARRAY[c.id] AS path
			FROM post_comments c
			WHERE c.post_id = $1 AND c.parent_comment_id IS NULL
			UNION ALL
			SELECT c.id, t.path || c.id
			FROM post_comments c
			JOIN tree t ON c.parent_comment_id = t.id
		)
		SELECT c.id, c.post_id, c.user_id,
		       CASE WHEN c.is_deleted THEN '' ELSE u.nickname END AS nickname,
		       CASE WHEN c.is_deleted THEN '' ELSE c.content END AS content,
		       COALESCE(c.parent_comment_id, 0) AS parent_comment_id,
		       pu.nickname AS parent_nickname,
		       c.depth, c.is_deleted, c.created_at
		FROM tree t
		JOIN post_comments c ON c.id = t.id
		JOIN users u ON u.id = c.user_id
		LEFT JOIN post_comments p ON p.id = c.parent_comment_id
		LEFT JOIN users pu ON pu.id = p.user_id
		ORDER BY t.path
	`
	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, user_id, content, COALESCE(parent_comment_id, 0) AS parent_comment_id,
		       depth, is_deleted, created_at
		FROM post_comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Create inserts a comment. ParentID 0 stores a top-level comment.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO post_comments (post_id, user_id, content, parent_comment_id, depth)
		VALUES ($1, $2, $3, NULLIF($4, 0), $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.PostID, c.UserID, c.Content, c.ParentID, c.Depth).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// UpdateContent replaces the text of a live comment. Only the owner can
// update.
func (r *commentRepository) UpdateContent(ctx context.Context, commentID, userID int64, content string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE post_comments
		SET content = $1
		WHERE id = $2 AND user_id = $3 AND NOT is_deleted
	`, content, commentID, userID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	existing, err := r.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if existing.IsDeleted {
		return model.ErrCommentDeleted
	}
	return model.ErrNotCommentOwner
}

// SoftDelete marks a comment deleted. Replies stay in the thread.
func (r *commentRepository) SoftDelete(ctx context.Context, commentID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE post_comments SET is_deleted = TRUE
		WHERE id = $1 AND NOT is_deleted
	`, commentID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentDeleted
	}
	return nil
}
