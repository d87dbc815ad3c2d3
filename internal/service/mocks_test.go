package service

import (
	"context"
	"time"

	"bulletinboard/internal/model"
)

type mockPostRepository struct {
	listFn    func(ctx context.Context, offset, limit int) ([]model.PostSummary, error)
	countFn   func(ctx context.Context) (int, error)
	getByIDFn func(ctx context.Context, postID int64) (*model.Post, error)
	deleteFn  func(ctx context.Context, postID, userID int64) error
	existsFn  func(ctx context.Context, postID int64) (bool, error)
	getFileFn func(ctx context.Context, fileID int64) (*model.PostFile, error)
}

func (m *mockPostRepository) List(ctx context.Context, offset, limit int) ([]model.PostSummary, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Delete(ctx context.Context, postID, userID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID, userID)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, postID)
	}
	return true, nil
}

func (m *mockPostRepository) GetFile(ctx context.Context, fileID int64) (*model.PostFile, error) {
	if m.getFileFn != nil {
		return m.getFileFn(ctx, fileID)
	}
	return nil, model.ErrFileNotFound
}

// fakeCommentRepository keeps comments in memory, in insertion order.
type fakeCommentRepository struct {
	comments []*model.Comment
	nextID   int64
	listErr  error
}

func (f *fakeCommentRepository) add(c model.Comment) {
	f.nextID++
	if c.ID == 0 {
		c.ID = f.nextID
	}
	f.comments = append(f.comments, &c)
}

func (f *fakeCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	for _, c := range f.comments {
		if c.ID == commentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, model.ErrCommentNotFound
}

func (f *fakeCommentRepository) Create(ctx context.Context, c *model.Comment) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	cp := *c
	f.comments = append(f.comments, &cp)
	return nil
}

func (f *fakeCommentRepository) UpdateContent(ctx context.Context, commentID, userID int64, content string) error {
	for _, c := range f.comments {
		if c.ID != commentID {
			continue
		}
		if c.IsDeleted {
			return model.ErrCommentDeleted
		}
		if c.UserID != userID {
			return model.ErrNotCommentOwner
		}
		c.Content = content
		return nil
	}
	return model.ErrCommentNotFound
}

func (f *fakeCommentRepository) SoftDelete(ctx context.Context, commentID int64) error {
	for _, c := range f.comments {
		if c.ID == commentID {
			if c.IsDeleted {
				return model.ErrCommentDeleted
			}
			c.IsDeleted = true
			return nil
		}
	}
	return model.ErrCommentNotFound
}

type mockRevokedTokenRepository struct {
	revoked         map[string]time.Time
	isRevokedErr    error
	deleteExpiredFn func(ctx context.Context) (int64, error)
}

func (m *mockRevokedTokenRepository) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[jti] = expiresAt
	return nil
}

func (m *mockRevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.isRevokedErr != nil {
		return false, m.isRevokedErr
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

func (m *mockRevokedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}
