package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicepost/internal/api"
	"github.com/nikhilbhutani/voicepost/internal/api/handlers"
	"github.com/nikhilbhutani/voicepost/internal/app"
	"github.com/nikhilbhutani/voicepost/internal/config"
	"github.com/nikhilbhutani/voicepost/internal/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional. Without it posts are served uncached and the
	// async endpoint is disabled.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
		rdb = nil
	}

	a := app.New(cfg, db, rdb)
	defer a.Close()

	health := handlers.NewHealthHandler().WithCheck("database", db)
	svc := api.Services{
		Users:          a.Users,
		Uploads:        a.Uploads,
		Transcriptions: a.Transcriptions,
		Blogs:          a.Blogs,
		Posts:          a.Posts,
		Webhooks:       a.Webhooks,
		Usage:          a.Audit,
		Models:         a.Gateway,
		Health:         health,
	}
	if a.Cache != nil {
		svc.Pages = a.Cache
		health.WithCheck("redis", a.Cache)
	}
	if a.Jobs != nil {
		svc.Jobs = a.Jobs
	}

	router := api.NewRouter(cfg, svc)
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // transcription and generation are synchronous
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
