package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"bulletinboard/internal/model"
	"bulletinboard/internal/repository"
)

// CommentService manages a post's comment thread. Every mutation answers
// with the refreshed thread.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	sanitizer   *bluemonday.Policy
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// List returns the thread of a live post.
func (s *CommentService) List(ctx context.Context, postID int64) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// Create adds a comment. A reply must name a parent of the same post and
// sit exactly one level below it.
func (s *CommentService) Create(ctx context.Context, postID, userID int64, req model.CreateCommentRequest) ([]model.Comment, error) {
	content, err := s.cleanContent(req.Content)
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	if req.ParentCommentID == 0 {
		if req.Depth != 0 {
			return nil, model.ErrInvalidDepth
		}
	} else {
		parent, err := s.commentRepo.GetByID(ctx, req.ParentCommentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrInvalidParent
		}
		if parent.IsDeleted {
			return nil, model.ErrCommentDeleted
		}
		if req.Depth != parent.Depth+1 || req.Depth > model.MaxCommentDepth {
			return nil, model.ErrInvalidDepth
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   userID,
		Content:  content,
		ParentID: req.ParentCommentID,
		Depth:    req.Depth,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	log.Printf("[CommentService] User %d commented on post %d (comment=%d, parent=%d)", userID, postID, comment.ID, req.ParentCommentID)
	return s.commentRepo.ListByPost(ctx, postID)
}

// Update replaces the text of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, postID, commentID, userID int64, content string) ([]model.Comment, error) {
	content, err := s.cleanContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.commentOf(ctx, postID, commentID); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, commentID, userID, content); err != nil {
		return nil, err
	}

	log.Printf("[CommentService] User %d updated comment %d", userID, commentID)
	return s.commentRepo.ListByPost(ctx, postID)
}

// Delete soft-deletes a comment. The comment's author and the post's
// author may delete it.
func (s *CommentService) Delete(ctx context.Context, postID, commentID, userID int64) ([]model.Comment, error) {
	comment, err := s.commentOf(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}

	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post.UserID != userID {
			return nil, model.ErrNotCommentOwner
		}
	}

	if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
		return nil, err
	}

	log.Printf("[CommentService] User %d deleted comment %d from post %d", userID, commentID, postID)
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) commentOf(ctx context.Context, postID, commentID int64) (*model.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, model.ErrCommentNotFound
	}
	if comment.IsDeleted {
		return nil, model.ErrCommentDeleted
	}
	return comment, nil
}

// cleanContent strips markup and enforces the length limit. Comments are
// stored as plain text, so the entities the sanitizer emits are decoded.
func (s *CommentService) cleanContent(content string) (string, error) {
	content = strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(content)))
	if content == "" {
		return "", model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return "", fmt.Errorf("%w: %d characters", model.ErrContentTooLong, utf8.RuneCountInString(content))
	}
	return content, nil
}
