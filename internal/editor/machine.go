// Package editor holds the reply/edit state of a comment thread. At most one
// secondary editor is open per page; its text begins with a protected
// "@nickname " prefix that keystrokes cannot remove.
package editor

import (
	"context"
	"errors"
	"strings"

	"bulletinboard/internal/model"
)

var (
	ErrEmptyComment = errors.New("comment content is empty")
	ErrNoSession    = errors.New("no reply or edit in progress")
)

// State is one of Idle, Replying or Editing.
type State interface {
	isState()
}

// Idle means no secondary editor is open.
type Idle struct{}

// Replying composes a reply under TargetID.
type Replying struct {
	TargetID       int64
	TargetDepth    int
	TargetNickname string
	Field          Field
}

// Editing rewrites the content of TargetID.
type Editing struct {
	TargetID int64
	Field    Field
}

func (Idle) isState() {}
func (Replying) isState() {}
func (Editing) isState() {}

// CommentWriter is the part of the gateway a submission needs.
type CommentWriter interface {
	CreateComment(ctx context.Context, postID, parentID int64, depth int, content string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID int64, content string) ([]model.Comment, error)
}

// Mention is the protected prefix for a reply to nickname.
func Mention(nickname string) string {
	return "@" + nickname + " "
}

// Machine holds the editor state of one page. It is not safe for concurrent
// use; the owning page serializes access.
type Machine struct {
	state State
}

func NewMachine() *Machine {
	return &Machine{state: Idle{}}
}

// State returns the current state.
func (m *Machine) State() State {
	if m.state == nil {
		return Idle{}
	}
	return m.state
}

// Active reports whether a reply or edit is open.
func (m *Machine) Active() bool {
	_, idle := m.State().(Idle)
	return !idle
}

// OpenReply starts a reply to c, discarding any open session. The prefix is
// built from c's own nickname.
func (m *Machine) OpenReply(c model.Comment) {
	m.state = Replying{
		TargetID:       c.ID,
		TargetDepth:    c.Depth,
		TargetNickname: c.Nickname,
		Field:          NewField(Mention(c.Nickname), ""),
	}
}

// OpenEdit starts editing c, discarding any open session. A reply keeps the
// mention of its parent as protected prefix.
func (m *Machine) OpenEdit(c model.Comment) {
	prefix := ""
	if c.HasParentNickname() {
		prefix = Mention(*c.ParentNickname)
	}
	m.state = Editing{
		TargetID: c.ID,
		Field:    NewField(prefix, c.Content),
	}
}

// Cancel discards the open session.
func (m *Machine) Cancel() {
	m.state = Idle{}
}

// Field returns the text field of the open session.
func (m *Machine) Field() (Field, bool) {
	switch s := m.State().(type) {
	case Replying:
		return s.Field, true
	case Editing:
		return s.Field, true
	}
	return Field{}, false
}

// HandleKey forwards a keystroke to the open field.
func (m *Machine) HandleKey(ev KeyEvent) (intercepted bool, err error) {
	err = m.update(func(f *Field) error {
		intercepted = f.HandleKey(ev)
		return nil
	})
	return intercepted, err
}

// Select records the browser's selection before a keystroke. Offsets are
// UTF-16 code units.
func (m *Machine) Select(start, end int) error {
	return m.update(func(f *Field) error {
		f.Select(RuneOffset(f.text, start), RuneOffset(f.text, end))
		return nil
	})
}

// Click applies a pointer selection to the open field. Offsets are UTF-16
// code units.
func (m *Machine) Click(start, end int) error {
	return m.update(func(f *Field) error {
		f.Click(RuneOffset(f.text, start), RuneOffset(f.text, end))
		return nil
	})
}

// SetText replaces the open field's text.
func (m *Machine) SetText(s string) error {
	return m.update(func(f *Field) error {
		return f.SetText(s)
	})
}

func (m *Machine) update(fn func(*Field) error) error {
	switch s := m.State().(type) {
	case Replying:
		if err := fn(&s.Field); err != nil {
			return err
		}
		m.state = s
	case Editing:
		if err := fn(&s.Field); err != nil {
			return err
		}
		m.state = s
	default:
		return ErrNoSession
	}
	return nil
}

// Submission is a validated reply or edit ready to be sent.
type Submission struct {
	Edit      bool
	CommentID int64 // edited comment
	ParentID  int64 // replied-to comment
	Depth     int
	Content   string
}

// Prepare validates the open session without changing it.
func (m *Machine) Prepare() (Submission, error) {
	var sub Submission
	var f Field
	switch s := m.State().(type) {
	case Replying:
		sub = Submission{ParentID: s.TargetID, Depth: s.TargetDepth + 1}
		f = s.Field
	case Editing:
		sub = Submission{Edit: true, CommentID: s.TargetID}
		f = s.Field
	default:
		return Submission{}, ErrNoSession
	}

	sub.Content = f.Body()
	if strings.TrimSpace(sub.Content) == "" {
		return Submission{}, ErrEmptyComment
	}
	return sub, nil
}

// Send performs the submission and returns the refreshed comment list.
func (s Submission) Send(ctx context.Context, postID int64, w CommentWriter) ([]model.Comment, error) {
	if s.Edit {
		return w.UpdateComment(ctx, postID, s.CommentID, s.Content)
	}
	return w.CreateComment(ctx, postID, s.ParentID, s.Depth, s.Content)
}

// Submit sends the open session. On success the machine returns to Idle;
// on any failure the session is left as it was.
func (m *Machine) Submit(ctx context.Context, postID int64, w CommentWriter) ([]model.Comment, error) {
	sub, err := m.Prepare()
	if err != nil {
		return nil, err
	}
	comments, err := sub.Send(ctx, postID, w)
	if err != nil {
		return nil, err
	}
	m.Cancel()
	return comments, nil
}
