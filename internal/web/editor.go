package web

import (
	"errors"
	"net/http"

	"bulletinboard/internal/detail"
	"bulletinboard/internal/editor"
	"bulletinboard/internal/httputil"
	"bulletinboard/internal/thread"
)

// keyRequest is a keydown in the reply/edit field. The selection is the
// browser's caret once earlier replies were applied; when absent the field
// keeps its own.
type keyRequest struct {
	editor.KeyEvent
	SelectionStart *int `json:"selectionStart"`
	SelectionEnd   *int `json:"selectionEnd"`
}

func (r keyRequest) selection() *detail.Selection {
	if r.SelectionStart == nil || r.SelectionEnd == nil {
		return nil
	}
	return &detail.Selection{Start: *r.SelectionStart, End: *r.SelectionEnd}
}

type selectRequest struct {
	SelectionStart int `json:"selectionStart"`
	SelectionEnd   int `json:"selectionEnd"`
}

type textRequest struct {
	Text string `json:"text"`
}

// fieldResponse carries the field after an event. Intercepted tells the
// browser to cancel its default action for the key.
type fieldResponse struct {
	Field       thread.FieldView `json:"field"`
	Intercepted bool             `json:"intercepted"`
}

func (s *Server) handleEditorKey(w http.ResponseWriter, r *http.Request) {
	page, _ := currentPage(r)
	var req keyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	field, intercepted, err := page.HandleKey(req.KeyEvent, req.selection())
	if err != nil {
		writeEditorError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fieldResponse{Field: field, Intercepted: intercepted})
}

func (s *Server) handleEditorClick(w http.ResponseWriter, r *http.Request) {
	page, _ := currentPage(r)
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	field, err := page.Click(req.SelectionStart, req.SelectionEnd)
	if err != nil {
		writeEditorError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fieldResponse{Field: field})
}

// handleEditorText handles pastes and other edits that are not single keys.
// A rejected edit answers with the unchanged field so the browser can
// restore it.
func (s *Server) handleEditorText(w http.ResponseWriter, r *http.Request) {
	page, _ := currentPage(r)
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	field, err := page.SetEditorText(req.Text)
	switch {
	case errors.Is(err, editor.ErrPrefixModified), errors.Is(err, editor.ErrTooLong):
		httputil.WriteJSON(w, http.StatusOK, fieldResponse{Field: field, Intercepted: true})
	case err != nil:
		writeEditorError(w, err)
	default:
		httputil.WriteJSON(w, http.StatusOK, fieldResponse{Field: field})
	}
}

func writeEditorError(w http.ResponseWriter, err error) {
	if errors.Is(err, editor.ErrNoSession) {
		writeJSONError(w, http.StatusConflict, "NO_EDITOR", "No reply or edit is open.")
		return
	}
	httputil.WriteInternalError(w, "Internal server error")
}
