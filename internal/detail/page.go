// Package detail coordinates the post detail page: the loaded post, its
// comment thread, the top-level draft and the reply/edit editor.
package detail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"bulletinboard/internal/editor"
	"bulletinboard/internal/model"
	"bulletinboard/internal/thread"
)

var (
	ErrPostUnavailable = errors.New("post unavailable")
	ErrNotLoaded       = errors.New("page not loaded")
	ErrDeleteRejected  = errors.New("delete rejected")
)

// Gateway is the forum API as seen by one user.
type Gateway interface {
	editor.CommentWriter
	FetchPost(ctx context.Context, postID int64) (*model.Post, error)
	FetchComments(ctx context.Context, postID int64) ([]model.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) ([]model.Comment, error)
	DeletePost(ctx context.Context, postID int64) (*model.DeletePostResponse, error)
}

// Page is one open post detail page. Its state is guarded by a mutex that is
// never held across gateway calls, so concurrent actions run in parallel and
// the last response to arrive wins.
type Page struct {
	postID int64
	gw     Gateway
	viewer thread.Viewer

	mu       sync.Mutex
	post     *model.Post
	comments []model.Comment
	draft    string
	editor   *editor.Machine
}

func NewPage(postID int64, gw Gateway, viewer thread.Viewer) *Page {
	return &Page{
		postID:   postID,
		gw:       gw,
		viewer:   viewer,
		comments: []model.Comment{},
		editor:   editor.NewMachine(),
	}
}

func (p *Page) PostID() int64 {
	return p.postID
}

// Load fetches the post and its comments concurrently. Failing to load the
// post is fatal for the page; failing to load comments is not.
func (p *Page) Load(ctx context.Context) error {
	var (
		post     *model.Post
		comments []model.Comment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		post, err = p.gw.FetchPost(gctx, p.postID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPostUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		comments, err = p.gw.FetchComments(gctx, p.postID)
		if err != nil {
			log.Printf("[DetailPage] Failed to load comments: post_id=%d, error=%v", p.postID, err)
			comments = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("[DetailPage] Failed to load post: post_id=%d, error=%v", p.postID, err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.post = post
	p.applyLocked(comments)
	return nil
}

// Loaded reports whether Load succeeded.
func (p *Page) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.post != nil
}

// View renders the current state.
func (p *Page) View() (thread.View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.post == nil {
		return thread.View{}, ErrNotLoaded
	}
	return thread.Render(p.post, p.comments, p.viewer, p.editor.State()), nil
}

// EditorState returns the state of the reply/edit editor.
func (p *Page) EditorState() editor.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editor.State()
}

// Draft is the unsent top-level comment.
func (p *Page) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// DeletePost deletes the post. A response with success=false is returned as
// ErrDeleteRejected carrying the server's message.
func (p *Page) DeletePost(ctx context.Context) error {
	resp, err := p.gw.DeletePost(ctx, p.postID)
	if err != nil {
		return err
	}
	if !resp.Success {
		if resp.Message == "" {
			return ErrDeleteRejected
		}
		return fmt.Errorf("%w: %s", ErrDeleteRejected, resp.Message)
	}
	log.Printf("[DetailPage] Post deleted: post_id=%d", p.postID)
	return nil
}

// SubmitComment posts text as a top-level comment. The draft is kept when
// the call fails.
func (p *Page) SubmitComment(ctx context.Context, text string) error {
	p.mu.Lock()
	p.draft = text
	p.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return editor.ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return editor.ErrTooLong
	}

	comments, err := p.gw.CreateComment(ctx, p.postID, 0, 0, text)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = ""
	p.applyLocked(comments)
	return nil
}

// OpenReply opens a reply box under the comment.
func (p *Page) OpenReply(commentID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.findLocked(commentID)
	if err != nil {
		return err
	}
	p.editor.OpenReply(c)
	return nil
}

// OpenEdit replaces the comment's text with an edit field.
func (p *Page) OpenEdit(commentID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.findLocked(commentID)
	if err != nil {
		return err
	}
	p.editor.OpenEdit(c)
	return nil
}

// Cancel closes the reply or edit box.
func (p *Page) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.editor.Cancel()
}

// SubmitEditor sends the open reply or edit.
func (p *Page) SubmitEditor(ctx context.Context) error {
	p.mu.Lock()
	sub, err := p.editor.Prepare()
	p.mu.Unlock()
	if err != nil {
		return err
	}

	comments, err := sub.Send(ctx, p.postID, p.gw)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(comments)
	return nil
}

// DeleteComment soft-deletes a comment.
func (p *Page) DeleteComment(ctx context.Context, commentID int64) error {
	comments, err := p.gw.DeleteComment(ctx, p.postID, commentID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.applyLocked(comments)
	return nil
}

// Selection is a browser selection in UTF-16 code units.
type Selection struct {
	Start int
	End   int
}

// HandleKey applies a keystroke to the open editor. A nil sel keeps the
// editor's own selection from the previous event.
func (p *Page) HandleKey(ev editor.KeyEvent, sel *Selection) (thread.FieldView, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sel != nil {
		if err := p.editor.Select(sel.Start, sel.End); err != nil {
			return thread.FieldView{}, false, err
		}
	}
	intercepted, err := p.editor.HandleKey(ev)
	if err != nil {
		return thread.FieldView{}, false, err
	}
	return p.fieldLocked(), intercepted, nil
}

// Click applies a pointer selection to the open editor.
func (p *Page) Click(start, end int) (thread.FieldView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editor.Click(start, end); err != nil {
		return thread.FieldView{}, err
	}
	return p.fieldLocked(), nil
}

// SetEditorText replaces the open editor's text.
func (p *Page) SetEditorText(s string) (thread.FieldView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.editor.SetText(s); err != nil {
		return p.fieldLocked(), err
	}
	return p.fieldLocked(), nil
}

func (p *Page) fieldLocked() thread.FieldView {
	f, _ := p.editor.Field()
	return thread.NewFieldView(f)
}

func (p *Page) findLocked(commentID int64) (model.Comment, error) {
	for _, c := range p.comments {
		if c.ID != commentID {
			continue
		}
		if c.IsDeleted {
			return model.Comment{}, model.ErrCommentDeleted
		}
		return c, nil
	}
	return model.Comment{}, model.ErrCommentNotFound
}

// applyLocked replaces the comment list with a server snapshot and closes
// the editor.
func (p *Page) applyLocked(comments []model.Comment) {
	if comments == nil {
		comments = []model.Comment{}
	}
	for _, issue := range thread.CheckOrder(comments) {
		log.Printf("[DetailPage] Unexpected comment order: post_id=%d, %s", p.postID, issue)
	}
	p.comments = comments
	p.editor.Cancel()
}
