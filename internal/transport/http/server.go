package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bulletinboard/internal/config"
	"bulletinboard/internal/database"
	"bulletinboard/internal/handler"
	"bulletinboard/internal/repository"
	"bulletinboard/internal/service"
	"bulletinboard/internal/worker"
)

// ShutdownTimeout bounds how long in-flight requests may take once a stop
// signal arrives.
const ShutdownTimeout = 5 * time.Second

// Run starts the board API and blocks until SIGINT or SIGTERM.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	// 2. Connect to Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// 3. Wire repositories and services
	userRepo := repository.NewUserRepository(db)
	revokedRepo := repository.NewRevokedTokenRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(revokedRepo, cfg)
	postService := service.NewPostService(postRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)

	var fileService *service.FileService
	if cfg.HasR2() {
		fileService, err = service.NewFileService(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to init file storage: %w", err)
		}
	} else {
		log.Println("[Server] R2 is not configured, attachment downloads are disabled")
	}

	router := NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService, cfg.SecureCookies),
		UserHandler:    handler.NewUserHandler(userService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		FileHandler:    handler.NewFileHandler(postService, fileService),
		Tokens:         authService,
	})

	// 4. Background jobs
	workers := worker.NewManager(worker.DefaultManagerConfig(), worker.Job{
		Name:     "revoked-token-cleanup",
		Interval: time.Hour,
		Run:      authService.CleanupRevoked,
	})
	if err := workers.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.Stop()

	// 5. Setup Server
	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return Serve(ctx, srv)
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, srv *stdhttp.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("[Server] Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("[Server] Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Println("[Server] Exited gracefully")
		return nil
	})

	return g.Wait()
}
