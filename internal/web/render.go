package web

import (
	"bytes"
	"context"
	"html/template"
	"log"
	"net/http"
	"strings"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/session"
	"bulletinboard/internal/thread"
)

var templateFuncs = template.FuncMap{
	"editorFor": editorFor,
}

// editorData is what the "editor" template receives.
type editorData struct {
	View  string
	Field thread.FieldView
}

func editorFor(viewID string, f thread.FieldView) editorData {
	return editorData{View: viewID, Field: f}
}

// layoutData is what every page template receives.
type layoutData struct {
	Title   string
	Session *session.Session
	Flash   string
	Page    any
}

// render executes a page template into a buffer first so a template error
// does not leave a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	sess := currentSession(r)
	flash, err := s.store.TakeFlash(r.Context(), sess.ID)
	if err != nil {
		log.Printf("[Web] TakeFlash failed: session=%s, error=%v", sess.ID, err)
	}

	tmpl, ok := s.tmpls[name]
	if !ok {
		log.Printf("[Web] Unknown template %s", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", layoutData{
		Title:   title,
		Session: sess,
		Flash:   flash,
		Page:    data,
	}); err != nil {
		log.Printf("[Web] Error executing template %s: %v", name, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) redirectWith(w http.ResponseWriter, r *http.Request, url, notice string) {
	if notice != "" {
		s.flash(r.Context(), currentSession(r), notice)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return httputil.DecodeJSON(w, r, v)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteError(w, status, code, message)
}

func sweepJob(sweep func() int) func(ctx context.Context) (int, error) {
	return func(ctx context.Context) (int, error) {
		return sweep(), nil
	}
}
