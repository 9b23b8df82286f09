// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the lilyblog server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
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

	"lilyblog/internal/cache"
	"lilyblog/internal/config"
	"lilyblog/internal/database"
	"lilyblog/internal/handlers"
	"lilyblog/internal/middleware"
	"lilyblog/internal/router"
	"lilyblog/internal/service"
	"lilyblog/internal/session"
	"lilyblog/internal/storage"
	"lilyblog/internal/store"
)

func main() {
	// Load configuration from defaults, the optional YAML file and env vars.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text for humans, JSON for log shippers.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var logger *slog.Logger
	if cfg.LogFormat == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"db_driver", cfg.DBDriver,
	)

	// Connect to the database.
	driver, err := database.ParseDriver(cfg.DBDriver)
	if err != nil {
		slog.Error("invalid database driver", "error", err)
		os.Exit(1)
	}
	dsn := cfg.DSN()
	if driver == database.DriverSQLite {
		dsn = database.SQLiteDSN(cfg.SQLitePath)
	}
	db, err := database.Connect(driver, dsn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db, driver); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the development admin and starter tags.
	if cfg.IsDev() {
		seed := database.SeedData{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Tags:          cfg.SeedTags,
		}
		if err := database.Seed(context.Background(), db, seed); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (optional: listing cache and shared sessions).
	var valkeyClient *redis.Client
	if cfg.ValkeyHost != "" {
		valkeyClient, err = cache.ConnectValkey(context.Background(), cache.ValkeyOptions{
			Host:     cfg.ValkeyHost,
			Port:     cfg.ValkeyPort,
			Password: cfg.ValkeyPassword,
			DB:       cfg.ValkeyDB,
			Attempts: 5,
		})
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()
	} else {
		slog.Warn("valkey not configured, listing cache off and sessions in memory")
	}

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Post content storage: S3 when configured, a local directory otherwise.
	content, err := contentBackend(cfg)
	if err != nil {
		slog.Error("failed to initialize content storage", "error", err)
		os.Exit(1)
	}

	// Initialize data stores and services.
	postStore := store.NewPostStore(db, store.WithEmptyPages(cfg.ListEmptyPageOK))
	listing := cache.NewListingCache(valkeyClient, cfg.ListCacheTTL)

	posts := service.NewPosts(postStore, content, listing)
	tags := service.NewTags(store.NewTagStore(db))
	comments := service.NewComments(store.NewCommentStore(db), postStore)
	admins := service.NewAdmins(store.NewAdminStore(db))

	// Create handler groups with their dependencies.
	adminHandlers := handlers.NewAdmin(posts, tags, comments, admins)
	authHandlers := handlers.NewAuth(admins, sessionStore)
	publicHandlers := handlers.NewPublic(posts, tags, comments)

	loginLimiter := middleware.NewRateLimiter("login", valkeyClient, 10, time.Minute)
	defer loginLimiter.Stop()
	commentLimiter := middleware.NewRateLimiter("comments", valkeyClient, 5, time.Minute)
	defer commentLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:      sessionStore,
		Admins:        admins,
		SecureCookies: secureCookies,
		Limits: router.Limits{
			Login:    loginLimiter,
			Comments: commentLimiter,
		},
	}, adminHandlers, authHandlers, publicHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// contentBackend picks where post markdown and HTML live.
func contentBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.S3Enabled() {
		s3, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, err
		}
		if s3 != nil {
			slog.Info("s3 content storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
			return s3, nil
		}
	}

	dir, err := storage.NewDir(cfg.ContentDir)
	if err != nil {
		return nil, err
	}
	slog.Info("local content storage", "dir", cfg.ContentDir)
	return dir, nil
}
