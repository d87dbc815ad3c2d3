package model

import (
	"errors"
	"strings"
	"time"
)

// Post is a board post with its attachments.
type Post struct {
	ID        int64      `db:"id" json:"postId"`
	UserID    int64      `db:"user_id" json:"userId"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`

	Files []PostFile `json:"files"`
}

// PostFile is an attachment stored in object storage.
type PostFile struct {
	ID        int64  `db:"id" json:"fileId"`
	PostID    int64  `db:"post_id" json:"-"`
	FileURL   string `db:"file_url" json:"fileUrl"`
	FileSize  int64  `db:"file_size" json:"fileSize"`
	ObjectKey string `db:"object_key" json:"-"`
}

// DisplayName strips the upload prefix ("<uuid>_name.ext" -> "name.ext").
func (f PostFile) DisplayName() string {
	return f.FileURL[strings.Index(f.FileURL, "_")+1:]
}

// SizeKB is the attachment size in kilobytes.
func (f PostFile) SizeKB() float64 {
	return float64(f.FileSize) / 1024
}

// PostSummary is one row of the board listing.
type PostSummary struct {
	ID           int64     `db:"id" json:"postId"`
	UserName     string    `db:"user_name" json:"userName"`
	Title        string    `db:"title" json:"title"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	CommentCount int       `db:"comment_count" json:"commentCount"`
}

// PostListResponse is one page of the board listing.
type PostListResponse struct {
	PostList    []PostSummary `json:"postList"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
}

// DeletePostResponse is returned by DELETE /post/{id}.
type DeletePostResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Listing constants
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// Post errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
	ErrFileNotFound = errors.New("file not found")
)
