package web

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"bulletinboard/internal/detail"
	"bulletinboard/internal/membership"
	"bulletinboard/internal/session"
	"bulletinboard/internal/thread"
)

const (
	sessionCookie  = "sid"
	rememberCookie = "rememberedEmail"
)

// Notices shown by the web client itself
const (
	NoticePageExpired   = "This page has expired. Please open it again."
	NoticeTooManyLogins = "Too many login attempts. Please wait a moment."
	NoticeListFailed    = "Unable to load posts."
)

type ctxKey int

const (
	pageKey ctxKey = iota
	pageIDKey
	formKey
)

// sessionMiddleware resolves the sid cookie, starting a new session when the
// cookie is missing or unknown.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var sess *session.Session
		if c, err := r.Cookie(sessionCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				sess, err = s.store.Get(ctx, c.Value)
				if err != nil && !errors.Is(err, session.ErrNotFound) {
					log.Printf("[Web] Session lookup failed: %v", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
			}
		}

		if sess == nil {
			var err error
			sess, err = s.store.Create(ctx)
			if err != nil {
				log.Printf("[Web] Session create failed: %v", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(s.opts.SessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   s.opts.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(ctx, sess)))
	})
}

// pageMiddleware loads the open detail page named by {viewID}.
func (s *Server) pageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		viewID := chi.URLParam(r, "viewID")

		page, ok := s.pages.Get(sess.ID, viewID)
		if !ok {
			if wantsJSON(r) {
				writeJSONError(w, http.StatusGone, "VIEW_EXPIRED", NoticePageExpired)
				return
			}
			s.flash(r.Context(), sess, NoticePageExpired)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), pageKey, page)
		ctx = context.WithValue(ctx, pageIDKey, viewID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// formMiddleware loads the registration form named by {formID}.
func (s *Server) formMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := currentSession(r)
		form, ok := s.forms.Get(sess.ID, chi.URLParam(r, "formID"))
		if !ok {
			if wantsJSON(r) {
				writeJSONError(w, http.StatusGone, "FORM_EXPIRED", NoticePageExpired)
				return
			}
			s.flash(r.Context(), sess, NoticePageExpired)
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), formKey, form)))
	})
}

// loginRateLimit rejects login attempts beyond the per-IP budget.
func (s *Server) loginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(r) {
			log.Printf("[Web] Login rate limited: ip=%s", clientIP(r))
			s.flash(r.Context(), currentSession(r), NoticeTooManyLogins)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentSession(r *http.Request) *session.Session {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		panic("web: session middleware not installed")
	}
	return sess
}

func currentPage(r *http.Request) (*detail.Page, string) {
	page, _ := r.Context().Value(pageKey).(*detail.Page)
	id, _ := r.Context().Value(pageIDKey).(string)
	return page, id
}

func currentForm(r *http.Request) *membership.Form {
	form, _ := r.Context().Value(formKey).(*membership.Form)
	return form
}

func viewerOf(sess *session.Session) thread.Viewer {
	return thread.Viewer{Authenticated: sess.Authenticated, Identity: sess.Username}
}

func (s *Server) flash(ctx context.Context, sess *session.Session, message string) {
	if err := s.store.Flash(ctx, sess.ID, message); err != nil {
		log.Printf("[Web] Flash failed: session=%s, error=%v", sess.ID, err)
	}
}
