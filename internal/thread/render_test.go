package thread

import (
	"strings"
	"testing"
	"time"

	"bulletinboard/internal/editor"
	"bulletinboard/internal/model"
)

func strPtr(s string) *string { return &s }

var (
	testPost = &model.Post{
		ID: 1, UserID: 100, Title: "hello", Content: "line one\nline two",
		Files: []model.PostFile{{ID: 5, FileURL: "abc_notes.txt", FileSize: 1536}, {ID: 6}},
	}
	testComments = []model.Comment{
		{ID: 10, UserID: 7, Nickname: "alice", Content: "root", Depth: 0, CreatedAt: time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)},
		{ID: 11, UserID: 8, Nickname: "bob", Content: "reply", ParentID: 10, ParentNickname: strPtr("alice"), Depth: 1},
		{ID: 12, UserID: 7, Nickname: "alice", Content: "gone", ParentID: 11, ParentNickname: strPtr("bob"), Depth: 2, IsDeleted: true},
	}
)

func TestRender_Rows(t *testing.T) {
	v := Render(testPost, testComments, Viewer{Authenticated: true, Identity: "7"}, editor.Idle{})

	if len(v.Rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(v.Rows))
	}
	for i, want := range []int{0, 30, 60} {
		if v.Rows[i].Indent != want {
			t.Errorf("row %d indent = %d, want %d", i, v.Rows[i].Indent, want)
		}
	}

	root := v.Rows[0]
	if root.CreatedAt != "2024-03-01 09:05" || root.Text != "root" || root.Author != "alice" {
		t.Errorf("root row = %+v", root)
	}
	if !root.CanReply || !root.CanEdit || !root.CanDelete {
		t.Errorf("author actions on own comment = %v/%v/%v", root.CanReply, root.CanEdit, root.CanDelete)
	}

	reply := v.Rows[1]
	if reply.Text != "@alice reply" {
		t.Errorf("reply text = %q", reply.Text)
	}
	if !reply.CanReply || reply.CanEdit || reply.CanDelete {
		t.Errorf("actions on other's comment = %v/%v/%v", reply.CanReply, reply.CanEdit, reply.CanDelete)
	}
}

func TestRender_DeletedRowKeepsSlot(t *testing.T) {
	v := Render(testPost, testComments, Viewer{Authenticated: true, Identity: "7"}, editor.Idle{})

	row := v.Rows[2]
	if !row.Deleted || row.Text != DeletedPlaceholder || row.Author != "" {
		t.Errorf("deleted row = %+v", row)
	}
	if row.CanReply || row.CanEdit || row.CanDelete {
		t.Error("deleted row exposes actions")
	}
	if row.Indent != 60 {
		t.Errorf("deleted row indent = %d, want 60", row.Indent)
	}
}

func TestRender_PostOwnerCanDeleteAnyComment(t *testing.T) {
	v := Render(testPost, testComments, Viewer{Authenticated: true, Identity: "100"}, editor.Idle{})

	if !v.CanDeletePost {
		t.Error("post owner cannot delete post")
	}
	for _, row := range v.Rows[:2] {
		if !row.CanDelete || row.CanEdit {
			t.Errorf("row %d: delete=%v edit=%v", row.CommentID, row.CanDelete, row.CanEdit)
		}
	}
}

func TestRender_Anonymous(t *testing.T) {
	v := Render(testPost, testComments, Viewer{}, editor.Idle{})

	if v.ShowComposer || v.CanDeletePost {
		t.Error("anonymous viewer sees composer or post delete")
	}
	for _, row := range v.Rows {
		if row.CanReply || row.CanEdit || row.CanDelete {
			t.Errorf("row %d exposes actions to anonymous viewer", row.CommentID)
		}
	}
}

func TestRender_ReplyBox(t *testing.T) {
	m := editor.NewMachine()
	m.OpenReply(testComments[1])

	v := Render(testPost, testComments, Viewer{Authenticated: true, Identity: "7"}, m.State())

	if v.ShowComposer {
		t.Error("composer shown while replying")
	}
	box := v.Rows[1].Reply
	if box == nil {
		t.Fatal("reply box missing under target row")
	}
	if box.Indent != 60 || box.Field.Text != "@bob " || box.Field.PrefixLen != 5 || box.Field.Start != 5 {
		t.Errorf("reply box = %+v", box)
	}
	if v.Rows[0].Reply != nil || v.Rows[2].Reply != nil {
		t.Error("reply box rendered under another row")
	}
}

func TestRender_EditField(t *testing.T) {
	m := editor.NewMachine()
	m.OpenEdit(testComments[1])

	v := Render(testPost, testComments, Viewer{Authenticated: true, Identity: "8"}, m.State())

	if !v.ShowComposer {
		t.Error("composer hidden while editing")
	}
	edit := v.Rows[1].Edit
	if edit == nil || edit.Text != "@alice reply" || edit.PrefixLen != 7 {
		t.Errorf("edit field = %+v", edit)
	}
}

func TestNewFieldView_UTF16Offsets(t *testing.T) {
	f := editor.NewField("@😀 ", "ab")

	fv := NewFieldView(f)
	if fv.PrefixLen != 4 || fv.Start != 4 || fv.End != 4 {
		t.Errorf("field view = %+v, want prefix and caret at 4", fv)
	}
	f.Select(f.Len(), f.Len())
	if fv = NewFieldView(f); fv.Start != 6 || fv.End != 6 {
		t.Errorf("caret at end = [%d,%d], want [6,6]", fv.Start, fv.End)
	}
}

func TestRender_Empty(t *testing.T) {
	v := Render(testPost, nil, Viewer{Authenticated: true, Identity: "1"}, editor.Idle{})
	if !v.Empty || len(v.Rows) != 0 || !v.ShowComposer {
		t.Errorf("view = %+v", v)
	}
}

func TestRender_Post(t *testing.T) {
	v := Render(testPost, nil, Viewer{}, editor.Idle{})

	if strings.Join(v.Post.Lines, "|") != "line one|line two" {
		t.Errorf("lines = %q", v.Post.Lines)
	}
	if len(v.Post.Files) != 1 {
		t.Fatalf("files = %+v, want one (empty url skipped)", v.Post.Files)
	}
	if f := v.Post.Files[0]; f.Name != "notes.txt" || f.SizeKB != "1.5" {
		t.Errorf("file = %+v", f)
	}
}

func TestCheckOrder(t *testing.T) {
	tests := []struct {
		name   string
		depths []int
		want   []int
	}{
		{"well formed", []int{0, 1, 2, 1, 0, 1}, nil},
		{"jump", []int{0, 2}, []int{1}},
		{"first row nested", []int{1, 2}, []int{0}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := make([]model.Comment, len(tt.depths))
			for i, d := range tt.depths {
				comments[i] = model.Comment{ID: int64(i + 1), Depth: d}
			}
			issues := CheckOrder(comments)
			if len(issues) != len(tt.want) {
				t.Fatalf("issues = %v, want indexes %v", issues, tt.want)
			}
			for i, idx := range tt.want {
				if issues[i].Index != idx {
					t.Errorf("issue %d index = %d, want %d", i, issues[i].Index, idx)
				}
			}
		})
	}
}
