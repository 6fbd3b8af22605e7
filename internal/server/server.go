// Package server is the composition root: it wires the store, services,
// handlers and middleware into one router and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	main.go opens:  repository.Store (MongoDB or SQLite)
//	server.New:     Store → AuthService / PostService → handlers → chi router
//
// The Server owns the store from New onwards and closes it after shutdown.
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
	"github.com/go-chi/cors"

	"github.com/sakif/yellowipe/internal/auth"
	"github.com/sakif/yellowipe/internal/config"
	"github.com/sakif/yellowipe/internal/handler"
	"github.com/sakif/yellowipe/internal/middleware"
	"github.com/sakif/yellowipe/internal/repository"
	"github.com/sakif/yellowipe/internal/service"
)

const (
	// MaxBodyBytes caps every request body.
	MaxBodyBytes = 10 << 20

	shutdownTimeout = 30 * time.Second
)

// Server is the HTTP server and everything it depends on.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	store  repository.Store
}

// New wires the dependency graph on top of store.
func New(cfg *config.Config, logger *slog.Logger, store repository.Store) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)

	authService := service.NewAuthService(store.Users(), tokens, passwords, logger)
	postService := service.NewPostService(store.Posts(), store.Users(), logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}
	s.setupRoutes(authService, postService)

	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts middleware and routes.
//
// ROUTES (all under /api):
//
//	POST   /auth/register
//	POST   /auth/login
//	GET    /auth/profile          (auth)
//	PUT    /users/profile         (auth)
//	GET    /users/{id}
//	GET    /posts
//	GET    /posts/{id}
//	POST   /posts                 (auth)
//	PUT    /posts/{id}/like       (auth)
//	POST   /posts/{id}/comments   (auth)
//	DELETE /posts/{id}            (auth)
//	GET    /health
//
// MIDDLEWARE ORDER:
// RequestID must come before the logger so every log line carries the id;
// Recoverer sits inside the logger so a recovered panic is logged as a 500.
func (s *Server) setupRoutes(authService *service.AuthService, postService *service.PostService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(chimiddleware.RequestSize(MaxBodyBytes))

	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.config.Environment, s.logger)

	requireAuth := auth.RequireAuth(authService)

	s.router.Route("/api", func(r chi.Router) {
		r.NotFound(handler.NotFound)
		r.MethodNotAllowed(handler.MethodNotAllowed)

		r.Get("/health", healthHandler.HandleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.With(requireAuth).Get("/profile", authHandler.HandleProfile)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(requireAuth).Put("/profile", authHandler.HandleUpdateProfile)
			r.Get("/{id}", authHandler.HandleGetUser)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.HandleList)
			r.Get("/{id}", postHandler.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", postHandler.HandleCreate)
				r.Put("/{id}/like", postHandler.HandleToggleLike)
				r.Post("/{id}/comments", postHandler.HandleAddComment)
				r.Delete("/{id}", postHandler.HandleDelete)
			})
		})
	})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. stop accepting new connections
//  2. wait up to 30s for in-flight requests
//  3. close the store
func (s *Server) Start() error {
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("environment", s.config.Environment),
			slog.String("store", s.config.StoreDriver),
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

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
