// Package main is the entry point for the Quill blog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
//
// Usage:
//
//	quill            run the server
//	quill seed       create the sample categories and tags
//	quill fix-slugs  regenerate empty category and tag slugs
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/internal/blog"
	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/handlers"
	"quill/internal/middleware"
	"quill/internal/render"
	"quill/internal/router"
	"quill/internal/session"
	"quill/internal/storage"
	"quill/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	if err := config.LoadEnvFile(".env"); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "":
		err = serve(cfg, db)
	case "seed":
		err = database.Seed(db, cfg.IsDev())
	case "fix-slugs":
		var cats, tags int
		cats, tags, err = database.FixSlugs(db)
		if err == nil {
			fmt.Printf("Fixed %d categories and %d tags.\n", cats, tags)
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		slog.Error("quill failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func serve(cfg *config.Config, db *sql.DB) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, true); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		return fmt.Errorf("connect valkey: %w", err)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies)

	// S3 storage is optional; without it uploads are ignored.
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	var mediaURL render.MediaURL
	if storageClient != nil {
		mediaURL = storageClient.URL
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, image uploads disabled")
	}

	renderer, err := render.New(mediaURL)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	svc := blog.NewFromStores(
		store.NewPostStore(db),
		store.NewCategoryStore(db),
		store.NewTagStore(db),
		store.NewCommentStore(db),
		store.NewUserStore(db),
		store.NewProfileStore(db),
		cache.NewNavCache(valkeyClient, cfg.NavCacheTTL),
	)

	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Public:        handlers.NewPublic(renderer, svc),
		Author:        handlers.NewAuthor(renderer, svc, storageClient),
		Auth:          handlers.NewAuth(renderer, sessionStore, svc),
		AuthLimiter:   middleware.NewRateLimiter(valkeyClient, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow),
		SecureCookies: cfg.SecureCookies,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
