package service

import (
	"context"
	"fmt"
	"log"

	"bulletinboard/internal/model"
	"bulletinboard/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// List returns one page of the board. Pages start at 1; a page past the end
// is empty.
func (s *PostService) List(ctx context.Context, page, size int) (*model.PostListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = model.DefaultPageSize
	}
	if size > model.MaxPageSize {
		size = model.MaxPageSize
	}

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, (page-1)*size, size)
	if err != nil {
		return nil, err
	}

	return &model.PostListResponse{
		PostList:    posts,
		CurrentPage: page,
		TotalPages:  (total + size - 1) / size,
	}, nil
}

func (s *PostService) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// Delete soft-deletes a post owned by userID.
func (s *PostService) Delete(ctx context.Context, postID, userID int64) error {
	if err := s.postRepo.Delete(ctx, postID, userID); err != nil {
		return err
	}
	log.Printf("[PostService] User %d deleted post %d", userID, postID)
	return nil
}

// GetFile returns an attachment of a live post.
func (s *PostService) GetFile(ctx context.Context, fileID int64) (*model.PostFile, error) {
	f, err := s.postRepo.GetFile(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file %d: %w", fileID, err)
	}
	return f, nil
}
