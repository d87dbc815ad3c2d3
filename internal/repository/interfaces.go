package repository

import (
	"context"
	"time"

	"bulletinboard/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type RevokedTokenRepository interface {
	Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// DeleteExpired drops entries whose token would have expired anyway.
	DeleteExpired(ctx context.Context) (int64, error)
}

type PostRepository interface {
	List(ctx context.Context, offset, limit int) ([]model.PostSummary, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	Delete(ctx context.Context, postID, userID int64) error
	Exists(ctx context.Context, postID int64) (bool, error)
	GetFile(ctx context.Context, fileID int64) (*model.PostFile, error)
}

type CommentRepository interface {
	// ListByPost returns the thread in tree-walk order: every comment is
	// followed by its replies, oldest first at each level.
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	Create(ctx context.Context, comment *model.Comment) error
	UpdateContent(ctx context.Context, commentID, userID int64, content string) error
	SoftDelete(ctx context.Context, commentID int64) error
}
