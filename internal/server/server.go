// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and owns the resources that outlive a request: the cache store,
// the session registry and the GitHub client.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → Server.New creates:
//	  KVStore (sqlite or redis) → cache.ProfileCache ┐
//	  github.Client                                   ├→ service.Registry → handlers
//	  auth.TokenService → auth.Session middleware     ┘
//
// Everything is assembled in New/setupRoutes (the "composition root"), not
// scattered across packages.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/profile-lookup/internal/auth"
	"github.com/sakif/profile-lookup/internal/cache"
	"github.com/sakif/profile-lookup/internal/config"
	"github.com/sakif/profile-lookup/internal/github"
	"github.com/sakif/profile-lookup/internal/handler"
	"github.com/sakif/profile-lookup/internal/middleware"
	"github.com/sakif/profile-lookup/internal/repository"
	redisRepo "github.com/sakif/profile-lookup/internal/repository/redis"
	sqliteRepo "github.com/sakif/profile-lookup/internal/repository/sqlite"
	"github.com/sakif/profile-lookup/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the cache store connection and the session registry.
// Close releases both; Start calls it on the way out.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	store    repository.KVStore
	registry *service.Registry
	tokens   *auth.TokenService
}

// New creates a Server from cfg: it opens the cache store, builds the
// lookup stack and registers the routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenService(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	fetcher := github.New(github.Config{
		BaseURL: cfg.GitHubAPIURL,
		Token:   cfg.GitHubToken,
		Timeout: cfg.GitHubTimeout,
	}, logger)

	registry := service.NewRegistry(service.Deps{
		Cache:   cache.New(store),
		Fetcher: fetcher,
		Logger:  logger,
		Options: service.Options{
			ErrorDismiss: cfg.ErrorDismiss,
			CachePolicy:  service.CachePolicy(cfg.CacheFailures),
		},
	}, cfg.SessionTTL)

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		registry: registry,
		tokens:   tokens,
	}

	if err := s.setupRoutes(); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore opens the KVStore named by cfg.CacheBackend.
func openStore(cfg config.Config, logger *slog.Logger) (repository.KVStore, error) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := redisRepo.New(ctx, redisRepo.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening redis cache: %w", err)
		}
		return store, nil

	default:
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil
	}
}

// newTokenService uses SESSION_SECRET when set. Without it sessions are
// signed with a per-process random key and do not survive a restart.
func newTokenService(cfg config.Config, logger *slog.Logger) (*auth.TokenService, error) {
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set, sessions will reset on restart")
		tokens, err := auth.NewEphemeralTokenService(cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("creating session tokens: %w", err)
		}
		return tokens, nil
	}

	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("creating session tokens: %w", err)
	}
	return tokens, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                   → lookup page (HTML)               [session]
//	POST /                   → form lookup, redirects to /      [session, limited]
//	POST /api/input          → input changed → submit status    [session]
//	POST /api/lookup         → run a lookup → page state        [session, limited]
//	GET  /api/state          → page state                       [session]
//	GET  /api/users/{handle} → one-off lookup, mapped statuses  [limited]
//	GET  /healthz            → liveness + cache ping
//	GET  /metrics            → Prometheus exposition
//	GET  /static/*           → CSS, JS
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID  - assigns an ID to each request, picked up by Logger
// 2. RealIP     - client IP from proxy headers, used by the rate limiter
// 3. Recoverer  - turns panics into 500s
// 4. Logger     - one line per request
// 5. Metrics    - Prometheus counters and histograms
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())

	// === Static Files ===
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Operational ===
	health := handler.NewHealthHandler(s.store, s.logger)
	s.router.Get("/healthz", health.HandleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// === Page + API ===
	page, err := handler.NewPageHandler(s.config.TemplateDir, s.registry, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	api := handler.NewLookupHandler(s.registry, s.registry, s.logger)

	limiter := middleware.NewRateLimiter(s.config.RateRPS, s.config.RateBurst, middleware.KeyBySessionOrIP())

	session := auth.Session(s.tokens, s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(session)
		r.Get("/", page.HandlePage)
		r.With(limiter.Handler).Post("/", page.HandleSubmit)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.With(limiter.Handler).Get("/users/{handle}", api.HandleUser)

		r.Group(func(r chi.Router) {
			r.Use(session)
			r.Post("/input", api.HandleInput)
			r.Get("/state", api.HandleState)
			r.With(limiter.Handler).Post("/lookup", api.HandleLookup)
		})
	})

	return nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops session timers and closes the cache store.
func (s *Server) Close() error {
	s.registry.Close()
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("closing cache store: %w", err)
	}
	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the cache store (flushes SQLite WAL / closes Redis pool)
//
// A lookup whose browser went away still finishes its fetch and cache
// write, so waiting for in-flight requests also waits for those.
func (s *Server) Start() error {
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Error("shutdown cleanup failed", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("cache", s.config.CacheBackend),
			slog.String("github", s.config.GitHubAPIURL),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
