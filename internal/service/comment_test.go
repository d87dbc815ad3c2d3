package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bulletinboard/internal/model"
)

const testPostID = 1

// newThread seeds post 1 (owned by user 1) with a top-level comment by user 2
// and a reply to it by user 3.
func newThread() (*CommentService, *fakeCommentRepository) {
	comments := &fakeCommentRepository{}
	comments.add(model.Comment{PostID: testPostID, UserID: 2, Nickname: "bob", Content: "top"})
	comments.add(model.Comment{PostID: testPostID, UserID: 3, Nickname: "carol", Content: "reply", ParentID: 1, Depth: 1})

	posts := &mockPostRepository{
		existsFn: func(ctx context.Context, postID int64) (bool, error) {
			return postID == testPostID, nil
		},
		getByIDFn: func(ctx context.Context, postID int64) (*model.Post, error) {
			if postID != testPostID {
				return nil, model.ErrPostNotFound
			}
			return &model.Post{ID: testPostID, UserID: 1}, nil
		},
	}
	return NewCommentService(comments, posts), comments
}

func TestCommentService_List(t *testing.T) {
	svc, _ := newThread()

	got, err := svc.List(context.Background(), testPostID)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	if _, err := svc.List(context.Background(), 99); !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestCommentService_Create(t *testing.T) {
	tests := []struct {
		name    string
		postID  int64
		req     model.CreateCommentRequest
		wantErr error
	}{
		{name: "top level", postID: testPostID, req: model.CreateCommentRequest{Content: "hello"}},
		{name: "reply", postID: testPostID, req: model.CreateCommentRequest{Content: "hi", ParentCommentID: 2, Depth: 2}},
		{name: "empty", postID: testPostID, req: model.CreateCommentRequest{Content: "   "}, wantErr: model.ErrContentRequired},
		{name: "markup only", postID: testPostID, req: model.CreateCommentRequest{Content: "<b></b>"}, wantErr: model.ErrContentRequired},
		{name: "too long", postID: testPostID, req: model.CreateCommentRequest{Content: strings.Repeat("가", 256)}, wantErr: model.ErrContentTooLong},
		{name: "missing post", postID: 99, req: model.CreateCommentRequest{Content: "x"}, wantErr: model.ErrPostNotFound},
		{name: "top level with depth", postID: testPostID, req: model.CreateCommentRequest{Content: "x", Depth: 1}, wantErr: model.ErrInvalidDepth},
		{name: "reply skips a level", postID: testPostID, req: model.CreateCommentRequest{Content: "x", ParentCommentID: 1, Depth: 2}, wantErr: model.ErrInvalidDepth},
		{name: "unknown parent", postID: testPostID, req: model.CreateCommentRequest{Content: "x", ParentCommentID: 42, Depth: 1}, wantErr: model.ErrCommentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newThread()
			got, err := svc.Create(context.Background(), tt.postID, 5, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if len(got) != 3 {
				t.Fatalf("len = %d, want 3", len(got))
			}
			last := got[2]
			if last.UserID != 5 || last.ParentID != tt.req.ParentCommentID || last.Depth != tt.req.Depth {
				t.Errorf("created comment = %+v", last)
			}
		})
	}
}

func TestCommentService_Create_StripsMarkup(t *testing.T) {
	svc, _ := newThread()

	got, err := svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: "<script>x</script>hi <b>there</b>"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c := got[len(got)-1].Content; c != "hi there" {
		t.Errorf("content = %q, want %q", c, "hi there")
	}
}

func TestCommentService_PlainTextSurvives(t *testing.T) {
	const text = `I'm sure a < b & c "quoted"`
	svc, _ := newThread()

	got, err := svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: text})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c := got[len(got)-1].Content; c != text {
		t.Errorf("created content = %q, want %q", c, text)
	}

	got, err = svc.Update(context.Background(), testPostID, 1, 2, text)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got[0].Content != text {
		t.Errorf("updated content = %q, want %q", got[0].Content, text)
	}
}

func TestCommentService_LengthCountsDecodedText(t *testing.T) {
	svc, _ := newThread()

	full := strings.Repeat("'", model.MaxCommentLength)
	got, err := svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: full})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c := got[len(got)-1].Content; c != full {
		t.Errorf("content length = %d, want %d", len(c), len(full))
	}

	_, err = svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: full + "&"})
	if !errors.Is(err, model.ErrContentTooLong) {
		t.Errorf("error = %v, want ErrContentTooLong", err)
	}
}

func TestCommentService_Create_ReplyToDeleted(t *testing.T) {
	svc, comments := newThread()
	comments.comments[0].IsDeleted = true

	_, err := svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: "x", ParentCommentID: 1, Depth: 1})
	if !errors.Is(err, model.ErrCommentDeleted) {
		t.Errorf("error = %v, want ErrCommentDeleted", err)
	}
}

func TestCommentService_Create_ParentOfOtherPost(t *testing.T) {
	svc, comments := newThread()
	comments.add(model.Comment{ID: 50, PostID: 2, UserID: 2, Content: "elsewhere"})

	_, err := svc.Create(context.Background(), testPostID, 5, model.CreateCommentRequest{Content: "x", ParentCommentID: 50, Depth: 1})
	if !errors.Is(err, model.ErrInvalidParent) {
		t.Errorf("error = %v, want ErrInvalidParent", err)
	}
}

func TestCommentService_Update(t *testing.T) {
	svc, _ := newThread()

	got, err := svc.Update(context.Background(), testPostID, 1, 2, "edited")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got[0].Content != "edited" {
		t.Errorf("content = %q, want %q", got[0].Content, "edited")
	}

	if _, err := svc.Update(context.Background(), testPostID, 1, 3, "not mine"); !errors.Is(err, model.ErrNotCommentOwner) {
		t.Errorf("error = %v, want ErrNotCommentOwner", err)
	}
	if _, err := svc.Update(context.Background(), 2, 1, 2, "wrong post"); !errors.Is(err, model.ErrCommentNotFound) {
		t.Errorf("error = %v, want ErrCommentNotFound", err)
	}
	if _, err := svc.Update(context.Background(), testPostID, 1, 2, ""); !errors.Is(err, model.ErrContentRequired) {
		t.Errorf("error = %v, want ErrContentRequired", err)
	}
}

func TestCommentService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		userID  int64
		wantErr error
	}{
		{name: "comment author", userID: 3},
		{name: "post author", userID: 1},
		{name: "stranger", userID: 9, wantErr: model.ErrNotCommentOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newThread()
			got, err := svc.Delete(context.Background(), testPostID, 2, tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if !got[1].IsDeleted {
				t.Error("comment should be marked deleted")
			}
		})
	}
}

func TestCommentService_Delete_Twice(t *testing.T) {
	svc, _ := newThread()

	if _, err := svc.Delete(context.Background(), testPostID, 2, 3); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := svc.Delete(context.Background(), testPostID, 2, 3); !errors.Is(err, model.ErrCommentDeleted) {
		t.Errorf("error = %v, want ErrCommentDeleted", err)
	}
}
