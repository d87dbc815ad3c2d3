package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bulletinboard/internal/handler"
	"bulletinboard/internal/httputil"
	authmw "bulletinboard/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	PostHandler    *handler.PostHandler
	CommentHandler *handler.CommentHandler
	FileHandler    *handler.FileHandler
	Tokens         authmw.TokenParser
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/register", cfg.UserHandler.Register)
		r.Get("/nicknameCheck", cfg.UserHandler.NicknameCheck)
		r.Get("/emailCheck", cfg.UserHandler.EmailCheck)

		r.Get("/post", cfg.PostHandler.List)
		r.Get("/post/{postID}/detail", cfg.PostHandler.Detail)
		r.Get("/post/{postID}/comment", cfg.CommentHandler.List)
		r.Get("/files/{fileID}/download", cfg.FileHandler.Download)

		// Session endpoints answer for anonymous callers too
		r.Group(func(r chi.Router) {
			r.Use(authmw.OptionalAuthMiddleware(cfg.Tokens))

			r.Get("/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/me", cfg.AuthHandler.Me)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(authmw.AuthMiddleware(cfg.Tokens))

			r.Delete("/post/{postID}", cfg.PostHandler.Delete)
			r.Post("/post/{postID}/comment", cfg.CommentHandler.Create)
			r.Put("/post/{postID}/comment/{commentID}", cfg.CommentHandler.Update)
			r.Delete("/post/{postID}/comment/{commentID}", cfg.CommentHandler.Delete)
		})
	})

	return r
}
