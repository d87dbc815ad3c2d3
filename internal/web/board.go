package web

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bulletinboard/internal/detail"
	"bulletinboard/internal/editor"
	"bulletinboard/internal/membership"
	"bulletinboard/internal/model"
	"bulletinboard/internal/pagination"
	"bulletinboard/internal/thread"
)

type listPage struct {
	Posts []postRow
	Pager pagination.Pager
	Error string
}

type postRow struct {
	ID           int64
	Title        string
	UserName     string
	CreatedAt    string
	CommentCount int
}

// handleList renders one page of the board. It is the landing page, so it
// also confirms that a logged-in session's token is still accepted.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)

	if sess.Token != "" {
		verified, err := membership.Verify(ctx, s.api.WithToken(sess.Token), s.store, sess)
		if err != nil {
			log.Printf("[Web] Auth check failed: session=%s, error=%v", sess.ID, err)
		} else if verified.Authenticated != sess.Authenticated {
			s.pages.DropOwner(sess.ID)
		}
		sess = verified
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	data := listPage{}
	list, err := s.api.WithToken(sess.Token).ListPosts(ctx, page, model.DefaultPageSize)
	if err != nil {
		log.Printf("[Web] List posts failed: page=%d, error=%v", page, err)
		data.Error = NoticeListFailed
	} else {
		data.Pager = pagination.New(list.CurrentPage, list.TotalPages)
		for _, p := range list.PostList {
			data.Posts = append(data.Posts, postRow{
				ID:           p.ID,
				Title:        p.Title,
				UserName:     p.UserName,
				CreatedAt:    thread.FormatTime(p.CreatedAt),
				CommentCount: p.CommentCount,
			})
		}
	}

	s.render(w, r, "list.html", "Board", data)
}

// handleOpenPost loads a post into a new page view and redirects to it.
func (s *Server) handleOpenPost(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil || postID <= 0 {
		http.NotFound(w, r)
		return
	}
	sess := currentSession(r)

	page := detail.NewPage(postID, s.api.WithToken(sess.Token), viewerOf(sess))
	if err := page.Load(r.Context()); err != nil {
		s.redirectWith(w, r, "/", detail.NoticePostUnavailable)
		return
	}

	viewID := s.pages.Put(sess.ID, page)
	http.Redirect(w, r, "/view/"+viewID, http.StatusSeeOther)
}

// handleFile sends the browser to the API's attachment download.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	fileID, err := strconv.ParseInt(chi.URLParam(r, "fileID"), 10, 64)
	if err != nil || fileID <= 0 {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, s.api.FileURL(fileID), http.StatusFound)
}

type detailPage struct {
	ViewID string
	View   thread.View
	Draft  string
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)
	view, err := page.View()
	if err != nil {
		s.redirectWith(w, r, "/", detail.NoticePostUnavailable)
		return
	}
	s.render(w, r, "detail.html", view.Post.Title, detailPage{
		ViewID: viewID,
		View:   view,
		Draft:  page.Draft(),
	})
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)
	err := page.DeletePost(r.Context())
	if err != nil {
		log.Printf("[Web] Delete post failed: post_id=%d, error=%v", page.PostID(), err)
		s.redirectWith(w, r, viewURL(viewID), detail.DeletePostNotice(err))
		return
	}
	s.pages.Delete(viewID)
	s.redirectWith(w, r, "/", detail.DeletePostNotice(nil))
}

func (s *Server) handleSubmitComment(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)
	if err := page.SubmitComment(r.Context(), r.PostFormValue("content")); err != nil {
		s.redirectWith(w, r, viewURL(viewID), detail.Notice(err, detail.ActionCreate))
		return
	}
	http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
}

func (s *Server) handleOpenReply(w http.ResponseWriter, r *http.Request) {
	s.openEditor(w, r, (*detail.Page).OpenReply, detail.ActionCreate)
}

func (s *Server) handleOpenEdit(w http.ResponseWriter, r *http.Request) {
	s.openEditor(w, r, (*detail.Page).OpenEdit, detail.ActionUpdate)
}

func (s *Server) openEditor(w http.ResponseWriter, r *http.Request, open func(*detail.Page, int64) error, action string) {
	page, viewID := currentPage(r)
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := open(page, commentID); err != nil {
		s.redirectWith(w, r, viewURL(viewID), detail.Notice(err, action))
		return
	}
	http.Redirect(w, r, viewURL(viewID)+"#comment-"+strconv.FormatInt(commentID, 10), http.StatusSeeOther)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)
	commentID, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := page.DeleteComment(r.Context(), commentID); err != nil {
		s.redirectWith(w, r, viewURL(viewID), detail.Notice(err, detail.ActionDelete))
		return
	}
	http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
}

// handleSubmitEditor sends the open reply or edit. The posted text, when
// present, replaces the field first so the form also works without script.
func (s *Server) handleSubmitEditor(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)

	action := detail.ActionCreate
	if _, editing := page.EditorState().(editor.Editing); editing {
		action = detail.ActionUpdate
	}

	if err := r.ParseForm(); err == nil && len(r.PostForm["content"]) > 0 {
		if _, err := page.SetEditorText(r.PostForm.Get("content")); err != nil {
			s.redirectWith(w, r, viewURL(viewID), editorNotice(err, action))
			return
		}
	}

	if err := page.SubmitEditor(r.Context()); err != nil {
		s.redirectWith(w, r, viewURL(viewID), editorNotice(err, action))
		return
	}
	http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
}

func (s *Server) handleCancelEditor(w http.ResponseWriter, r *http.Request) {
	page, viewID := currentPage(r)
	page.Cancel()
	http.Redirect(w, r, viewURL(viewID), http.StatusSeeOther)
}

// NoticePrefixModified is shown when a posted reply lost its mention.
const NoticePrefixModified = "The mention at the start of the comment cannot be changed."

func editorNotice(err error, action string) string {
	if errors.Is(err, editor.ErrPrefixModified) {
		return NoticePrefixModified
	}
	return detail.Notice(err, action)
}

func viewURL(viewID string) string {
	return "/view/" + viewID
}
