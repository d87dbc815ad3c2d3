// Package thread turns a post and its flat, server-ordered comment list into
// display rows.
package thread

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bulletinboard/internal/editor"
	"bulletinboard/internal/model"
)

const (
	// IndentUnit is the left margin per depth level, in pixels.
	IndentUnit = 30

	DeletedPlaceholder = "This comment has been deleted."
	EmptyPlaceholder   = "No comments yet."

	TimeLayout = "2006-01-02 15:04"
)

// Viewer is the identity looking at the page. Identity is compared by
// equality with owner ids rendered in decimal.
type Viewer struct {
	Authenticated bool
	Identity      string
}

func (v Viewer) owns(userID int64) bool {
	return v.Authenticated && v.Identity != "" && v.Identity == strconv.FormatInt(userID, 10)
}

type View struct {
	Post          PostView
	CanDeletePost bool
	Rows          []Row
	Empty         bool
	ShowComposer  bool
}

type PostView struct {
	ID        int64
	Title     string
	Lines     []string
	CreatedAt string
	Files     []FileView
}

type FileView struct {
	ID     int64
	Name   string
	SizeKB string
}

type Row struct {
	CommentID int64
	Depth     int
	Indent    int
	Deleted   bool
	Author    string
	CreatedAt string
	Text      string

	CanReply  bool
	CanEdit   bool
	CanDelete bool

	// Edit replaces Text while this comment is being edited.
	Edit *FieldView
	// Reply is the reply box rendered below this row.
	Reply *ReplyBox
}

// FieldView is the visible state of a protected text field. Offsets are
// UTF-16 code units, as the browser counts them.
type FieldView struct {
	Text      string `json:"text"`
	PrefixLen int    `json:"prefixLen"`
	Start     int    `json:"selectionStart"`
	End       int    `json:"selectionEnd"`
}

type ReplyBox struct {
	Indent int
	Field  FieldView
}

// NewFieldView captures f for display.
func NewFieldView(f editor.Field) FieldView {
	text := f.Text()
	start, end := f.Selection()
	return FieldView{
		Text:      text,
		PrefixLen: editor.UnitOffset(text, f.PrefixLen()),
		Start:     editor.UnitOffset(text, start),
		End:       editor.UnitOffset(text, end),
	}
}

// Render builds the page view for a loaded post. The comment order is used
// as given.
func Render(post *model.Post, comments []model.Comment, viewer Viewer, state editor.State) View {
	v := View{
		Post:          newPostView(post),
		CanDeletePost: viewer.owns(post.UserID),
		Rows:          make([]Row, 0, len(comments)),
		Empty:         len(comments) == 0,
	}

	_, replying := state.(editor.Replying)
	v.ShowComposer = viewer.Authenticated && !replying

	for _, c := range comments {
		row := Row{
			CommentID: c.ID,
			Depth:     c.Depth,
			Indent:    c.Depth * IndentUnit,
			Deleted:   bool(c.IsDeleted),
		}

		if c.IsDeleted {
			row.Text = DeletedPlaceholder
		} else {
			row.Author = c.Nickname
			row.CreatedAt = FormatTime(c.CreatedAt)
			row.Text = DisplayText(c)
			row.CanReply = viewer.Authenticated
			row.CanEdit = viewer.owns(c.UserID)
			row.CanDelete = viewer.owns(c.UserID) || viewer.owns(post.UserID)

			if s, ok := state.(editor.Editing); ok && s.TargetID == c.ID {
				fv := NewFieldView(s.Field)
				row.Edit = &fv
			}
		}

		if s, ok := state.(editor.Replying); ok && s.TargetID == c.ID {
			row.Reply = &ReplyBox{
				Indent: (s.TargetDepth + 1) * IndentUnit,
				Field:  NewFieldView(s.Field),
			}
		}

		v.Rows = append(v.Rows, row)
	}
	return v
}

// DisplayText is the comment body with the mention of its parent, if any.
func DisplayText(c model.Comment) string {
	if c.HasParentNickname() {
		return editor.Mention(*c.ParentNickname) + c.Content
	}
	return c.Content
}

// FormatTime renders t as "YYYY-MM-DD hh:mm"; the zero time renders empty.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

func newPostView(p *model.Post) PostView {
	pv := PostView{
		ID:        p.ID,
		Title:     p.Title,
		Lines:     strings.Split(p.Content, "\n"),
		CreatedAt: FormatTime(p.CreatedAt),
		Files:     make([]FileView, 0, len(p.Files)),
	}
	for _, f := range p.Files {
		if f.FileURL == "" {
			continue
		}
		pv.Files = append(pv.Files, FileView{
			ID:     f.ID,
			Name:   f.DisplayName(),
			SizeKB: fmt.Sprintf("%.1f", f.SizeKB()),
		})
	}
	return pv
}

// OrderIssue is a row whose depth cannot follow the previous row in a
// tree walk.
type OrderIssue struct {
	Index     int
	CommentID int64
	Depth     int
	PrevDepth int
}

func (o OrderIssue) String() string {
	return fmt.Sprintf("comment %d at index %d has depth %d after depth %d", o.CommentID, o.Index, o.Depth, o.PrevDepth)
}

// CheckOrder reports rows that descend more than one level below the
// previous row. The list is not reordered.
func CheckOrder(comments []model.Comment) []OrderIssue {
	var issues []OrderIssue
	prev := -1
	for i, c := range comments {
		if c.Depth > prev+1 {
			issues = append(issues, OrderIssue{Index: i, CommentID: c.ID, Depth: c.Depth, PrevDepth: prev})
		}
		prev = c.Depth
	}
	return issues
}
