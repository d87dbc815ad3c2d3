package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bulletinboard/internal/config"
	"bulletinboard/internal/gateway"
	"bulletinboard/internal/redis"
	"bulletinboard/internal/session"
	apihttp "bulletinboard/internal/transport/http"
	"bulletinboard/internal/web"
	"bulletinboard/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Web client failed: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionTTL := time.Duration(cfg.SessionMaxAge) * time.Second

	var store session.Store
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		store = session.NewRedisStore(client, sessionTTL)
		log.Println("[Web] Sessions stored in Redis")
	} else {
		store = session.NewMemoryStore(sessionTTL)
		log.Println("[Web] REDIS_URL not set, sessions kept in memory")
	}

	srv, err := web.NewServer(gateway.New(cfg.APIBaseURL, cfg.APITimeout), store, web.Options{
		SessionMaxAge:  sessionTTL,
		ViewTTL:        cfg.ViewTTL,
		LoginRateLimit: cfg.LoginRateLimit,
		LoginRateBurst: cfg.LoginRateBurst,
		SecureCookies:  cfg.SecureCookies,
	})
	if err != nil {
		return fmt.Errorf("failed to build web client: %w", err)
	}

	workers := worker.NewManager(worker.DefaultManagerConfig(), srv.Jobs()...)
	if err := workers.Start(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.Stop()

	log.Printf("[Web] Using board API at %s", cfg.APIBaseURL)
	return apihttp.Serve(ctx, &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	})
}
