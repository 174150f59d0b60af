package server

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kushal-g/llm-chat-apiserver/config"
	"github.com/kushal-g/llm-chat-apiserver/internal/ai"
	"github.com/kushal-g/llm-chat-apiserver/internal/auth"
	"github.com/kushal-g/llm-chat-apiserver/internal/db"
	"github.com/kushal-g/llm-chat-apiserver/internal/handlers"
	"github.com/kushal-g/llm-chat-apiserver/internal/services"
	"github.com/kushal-g/llm-chat-apiserver/internal/store"
)

const (
	authRateLimitRPS   = 5
	authRateLimitBurst = 10
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	generator, err := ai.NewFromConfig(cfg.AI)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	chatRepo := store.NewChatRepository(dbConn)

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret)
	authService := services.NewAuthService(userRepo, tokenService)
	chatService := services.NewChatService(chatRepo, generator)

	authMiddleware := handlers.RequireAuth(tokenService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	// The browser client runs on a different origin; every route answers
	// preflight and carries permissive CORS headers.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Group(func(r chi.Router) {
		r.Use(handlers.RateLimit(authRateLimitRPS, authRateLimitBurst))
		handlers.AuthRouter(r, authService, authMiddleware)
	})
	router.Group(func(r chi.Router) {
		handlers.ChatRouter(r, chatService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return s.Shutdown()
}

// Shutdown closes the server and its database connection.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
