package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"bulletinboard/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// List returns one page of live posts, newest first, with the number of
// comments that are not deleted.
func (r *postRepository) List(ctx context.Context, offset, limit int) ([]model.PostSummary, error) {
	query := `
		SELECT p.id, u.nickname AS user_name, p.title, p.created_at,
		       (SELECT COUNT(*) FROM post_comments c
		        WHERE c.post_id = p.id AND NOT c.is_deleted) AS comment_count
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.created_at DESC, p.id DESC
		OFFSET $1 LIMIT $2
	`
	posts := []model.PostSummary{}
	if err := r.db.SelectContext(ctx, &posts, query, offset, limit); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE deleted_at IS NULL`); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// GetByID retrieves a single post with its attachments.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM posts
		WHERE id = $1 AND deleted_at IS NULL
	`
	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post.Files = []model.PostFile{}
	err = r.db.SelectContext(ctx, &post.Files, `
		SELECT id, post_id, file_url, file_size, object_key
		FROM post_files
		WHERE post_id = $1
		ORDER BY id
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("get post files: %w", err)
	}

	return &post, nil
}

// Delete performs a soft delete on a post.
func (r *postRepository) Delete(ctx context.Context, postID, userID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE posts SET deleted_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		// Check if post exists but belongs to different user
		exists, err := r.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if exists {
			return model.ErrNotPostOwner
		}
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1 AND deleted_at IS NULL)`, postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// GetFile returns an attachment of a live post.
func (r *postRepository) GetFile(ctx context.Context, fileID int64) (*model.PostFile, error) {
	query := `
		SELECT f.id, f.post_id, f.file_url, f.file_size, f.object_key
		FROM post_files f
		JOIN posts p ON p.id = f.post_id
		WHERE f.id = $1 AND p.deleted_at IS NULL
	`
	var f model.PostFile
	err := r.db.GetContext(ctx, &f, query, fileID)
	if err == sql.ErrNoRows {
		return nil, model.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return &f, nil
}
