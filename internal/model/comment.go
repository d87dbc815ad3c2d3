package model

import (
	"errors"
	"fmt"
	"time"
)

// Comment is one entry of a post's comment thread. Threads are delivered as a
// flat list already in tree-walk order; Depth drives indentation.
type Comment struct {
	ID             int64     `db:"id" json:"commentId"`
	PostID         int64     `db:"post_id" json:"postId"`
	UserID         int64     `db:"user_id" json:"userId"`
	Nickname       string    `db:"nickname" json:"nickname"`
	Content        string    `db:"content" json:"commentContent"`
	ParentID       int64     `db:"parent_comment_id" json:"parentCommentId"` // 0 for top-level
	ParentNickname *string   `db:"parent_nickname" json:"parentNickname"`
	Depth          int       `db:"depth" json:"depth"`
	IsDeleted      Flag      `db:"is_deleted" json:"isDeleted"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// HasParentNickname reports whether the comment is a reply to a named author.
func (c Comment) HasParentNickname() bool {
	return c.ParentNickname != nil && *c.ParentNickname != ""
}

// Flag is a boolean carried as 0/1 on the wire.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", b)
	}
	return nil
}

// CreateCommentRequest carries the form fields of POST /post/{id}/comment.
type CreateCommentRequest struct {
	Content         string
	ParentCommentID int64
	Depth           int
}

// Comment constraints
const (
	MaxCommentLength = 255
	MaxCommentDepth  = 32
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrContentRequired = errors.New("comment content is required")
	ErrContentTooLong  = errors.New("comment content too long")
	ErrInvalidParent   = errors.New("parent comment does not belong to this post")
	ErrInvalidDepth    = errors.New("comment depth does not match its parent")
	ErrCommentDeleted  = errors.New("comment has been deleted")
)
