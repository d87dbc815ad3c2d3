// Package web is the server-driven web client of the board. Pages are
// rendered with html/template; each open post detail page keeps its state
// (comment thread, reply/edit editor) on the server between requests.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"bulletinboard/internal/detail"
	"bulletinboard/internal/gateway"
	"bulletinboard/internal/membership"
	"bulletinboard/internal/session"
	"bulletinboard/internal/worker"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options configures the web client.
type Options struct {
	SessionMaxAge  time.Duration
	ViewTTL        time.Duration
	LoginRateLimit float64
	LoginRateBurst int
	SecureCookies  bool
}

func (o *Options) setDefaults() {
	if o.SessionMaxAge <= 0 {
		o.SessionMaxAge = 24 * time.Hour
	}
	if o.ViewTTL <= 0 {
		o.ViewTTL = 30 * time.Minute
	}
	if o.LoginRateLimit <= 0 {
		o.LoginRateLimit = 1
	}
	if o.LoginRateBurst <= 0 {
		o.LoginRateBurst = 5
	}
}

// Server holds the dependencies of the web handlers.
type Server struct {
	api     *gateway.Client
	store   session.Store
	pages   *Registry[*detail.Page]
	forms   *Registry[*membership.Form]
	limiter *IPRateLimiter
	tmpls   map[string]*template.Template
	opts    Options
}

var pageTemplates = []string{"list.html", "detail.html", "login.html", "register.html"}

// NewServer parses the templates and wires the handlers.
func NewServer(api *gateway.Client, store session.Store, opts Options) (*Server, error) {
	opts.setDefaults()

	tmpls := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		tmpls[name] = t
	}

	return &Server{
		api:     api,
		store:   store,
		pages:   NewRegistry[*detail.Page](),
		forms:   NewRegistry[*membership.Form](),
		limiter: NewIPRateLimiter(rate.Limit(opts.LoginRateLimit), opts.LoginRateBurst),
		tmpls:   tmpls,
		opts:    opts,
	}, nil
}

// Routes returns the router of the web client.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("[Web] static assets: %v", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", s.handleList)
		r.Get("/post/{postID}", s.handleOpenPost)
		r.Get("/files/{fileID}", s.handleFile)

		r.Route("/view/{viewID}", func(r chi.Router) {
			r.Use(s.pageMiddleware)

			r.Get("/", s.handleView)
			r.Post("/post/delete", s.handleDeletePost)
			r.Post("/comment", s.handleSubmitComment)
			r.Post("/comment/{commentID}/reply", s.handleOpenReply)
			r.Post("/comment/{commentID}/edit", s.handleOpenEdit)
			r.Post("/comment/{commentID}/delete", s.handleDeleteComment)
			r.Post("/editor/submit", s.handleSubmitEditor)
			r.Post("/editor/cancel", s.handleCancelEditor)
			r.Post("/editor/key", s.handleEditorKey)
			r.Post("/editor/click", s.handleEditorClick)
			r.Post("/editor/text", s.handleEditorText)
		})

		r.Get("/login", s.handleLoginPage)
		r.With(s.loginRateLimit).Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)

		r.Get("/register", s.handleRegisterPage)
		r.Route("/register/{formID}", func(r chi.Router) {
			r.Use(s.formMiddleware)

			r.Post("/", s.handleRegister)
			r.Post("/nickname", s.handleNicknameField)
			r.Post("/email", s.handleEmailField)
			r.Post("/password", s.handlePasswordField)
			r.Post("/phone", s.handlePhoneField)
		})
	})

	return r
}

// Jobs returns the maintenance jobs of the web client.
func (s *Server) Jobs() []worker.Job {
	jobs := []worker.Job{
		{
			Name:     "view-sweeper",
			Interval: s.opts.ViewTTL / 4,
			Run:      sweepJob(func() int { return s.pages.Sweep(s.opts.ViewTTL) }),
		},
		{
			Name:     "form-sweeper",
			Interval: s.opts.ViewTTL / 4,
			Run:      sweepJob(func() int { return s.forms.Sweep(s.opts.ViewTTL) }),
		},
		{
			Name:     "limiter-sweeper",
			Interval: 10 * time.Minute,
			Run:      sweepJob(func() int { return s.limiter.Sweep(10 * time.Minute) }),
		},
	}
	if mem, ok := s.store.(*session.MemoryStore); ok {
		jobs = append(jobs, worker.Job{Name: "session-sweeper", Run: sweepJob(mem.Sweep)})
	}
	return jobs
}
