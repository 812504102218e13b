// Copyright (c) 2025-2026 Folio Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Command folio runs the portfolio site server: public content API plus the
// single-admin management API behind the authorization gate.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/foliolabs/folio/internal/auth"
	"github.com/foliolabs/folio/internal/config"
	"github.com/foliolabs/folio/internal/handler"
	"github.com/foliolabs/folio/internal/middleware"
	"github.com/foliolabs/folio/internal/scheduler"
	"github.com/foliolabs/folio/internal/store"
	"github.com/foliolabs/folio/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("folio %s (%s)\n", appVersion, appGitCommit)
		return
	}

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		slog.Error("creating data directory", "error", err)
		os.Exit(1)
	}

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		slog.Error("migrating database", "error", err)
		os.Exit(1)
	}

	if cfg.DoSeed {
		if err := store.Seed(context.Background(), db); err != nil {
			slog.Error("seeding database", "error", err)
			os.Exit(1)
		}
	}

	sessions := auth.NewSessions(cfg.SessionSecret)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	notifier := webhook.NewNotifier(cfg.ContactWebhookURL, slog.Default())
	secureCookies := !cfg.IsDevelopment()

	authHandler := handler.NewAuthHandler(db, sessions, loginProtection, secureCookies)
	projectsHandler := handler.NewProjectsHandler(db)
	postsHandler := handler.NewPostsHandler(db)
	booksHandler := handler.NewBooksHandler(db)
	contactHandler := handler.NewContactHandler(db, notifier)
	profileHandler := handler.NewProfileHandler(db)
	mediaHandler := handler.NewMediaHandler(db, cfg.UploadsDir)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))

	// Public routes.
	r.Get("/healthz", healthHandler.Health)
	r.Get("/api/projects", projectsHandler.List)
	r.Get("/api/blog", postsHandler.List)
	r.Get("/api/blog/{slug}", postsHandler.GetBySlug)
	r.Get("/api/reading-list", booksHandler.List)
	r.Get("/api/about", profileHandler.GetAbout)
	r.Get("/api/profile", profileHandler.GetProfileMeta)
	r.Post("/api/contact", contactHandler.Submit)
	r.Post("/api/auth/login", middleware.LimitLogin(loginProtection, authHandler.Login))

	// Uploaded files.
	fileServer(r, "/uploads", http.Dir(cfg.UploadsDir))

	// Admin routes: everything below passes the authorization gate before any
	// side effect runs.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(sessions, secureCookies))

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/auth/session", authHandler.Session)
		r.Post("/api/auth/change-password", authHandler.ChangePassword)
		r.Post("/api/auth/change-email", authHandler.ChangeEmail)

		r.Post("/api/projects", projectsHandler.Create)
		r.Put("/api/projects/{id}", projectsHandler.Update)
		r.Delete("/api/projects/{id}", projectsHandler.Delete)

		r.Get("/api/admin/blog", postsHandler.ListAll)
		r.Post("/api/blog", postsHandler.Create)
		r.Put("/api/blog/{id}", postsHandler.Update)
		r.Delete("/api/blog/{id}", postsHandler.Delete)

		r.Post("/api/reading-list", booksHandler.Create)
		r.Put("/api/reading-list/{id}", booksHandler.Update)
		r.Delete("/api/reading-list/{id}", booksHandler.Delete)

		r.Get("/api/admin/contact", contactHandler.List)
		r.Put("/api/about", profileHandler.UpdateAbout)

		r.Post("/api/uploads/images", mediaHandler.UploadImage)
		r.Post("/api/uploads/resume", mediaHandler.UploadResume)
	})

	sched := scheduler.New(db, slog.Default())
	if err := sched.Start(); err != nil {
		slog.Error("starting scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", appVersion)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// setupLogger configures the default slog logger.
func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
}

// fileServer serves static files from root under path, without directory
// listings.
func fileServer(r chi.Router, path string, root http.FileSystem) {
	fs := http.StripPrefix(path, http.FileServer(neuteredFS{root}))
	r.Get(path+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// neuteredFS hides directory listings from http.FileServer.
type neuteredFS struct {
	fs http.FileSystem
}

func (n neuteredFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
