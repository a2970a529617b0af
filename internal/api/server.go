package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/CosmoBean/simplysecure/internal/catalog"
	"github.com/CosmoBean/simplysecure/internal/config"
	"github.com/CosmoBean/simplysecure/internal/events"
	"github.com/CosmoBean/simplysecure/internal/health"
	"github.com/CosmoBean/simplysecure/internal/leaderboard"
	"github.com/CosmoBean/simplysecure/internal/progression"
	"github.com/CosmoBean/simplysecure/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	catalog        *catalog.Catalog
	engine         *progression.Engine
	hub            *events.Hub
	board          *leaderboard.Leaderboard
	health         *health.Registry
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server. board may be nil when the
// leaderboard is disabled.
func NewServer(
	cfg config.ServerConfig,
	cat *catalog.Catalog,
	engine *progression.Engine,
	repo storage.Repository,
	hub *events.Hub,
	board *leaderboard.Leaderboard,
	checks *health.Registry,
) *Server {
	s := &Server{
		config:         cfg,
		catalog:        cat,
		engine:         engine,
		hub:            hub,
		board:          board,
		health:         checks,
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply authentication middleware to all /api/v1/* routes
		r.Use(s.authMiddleware.Authenticate)

		// Permission classifications
		r.Route("/permissions", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("permissions:read")).Get("/", s.handleListClassifications)
			r.With(s.authMiddleware.RequirePermission("permissions:read")).Get("/{type}", s.handleClassifyPermission)
		})

		// Task catalog
		r.Route("/catalog", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("catalog:read")).Get("/tasks", s.handleListTasks)
			r.With(s.authMiddleware.RequirePermission("catalog:read")).Get("/tasks/{id}", s.handleGetTask)
			r.With(s.authMiddleware.RequirePermission("catalog:read")).Get("/days", s.handleListDays)
			r.With(s.authMiddleware.RequirePermission("catalog:read")).Get("/days/{day}", s.handleGetDay)
			r.With(s.authMiddleware.RequirePermission("catalog:read")).Get("/achievements", s.handleListAchievements)
		})

		// User progression
		r.Route("/users/{userId}", func(r chi.Router) {
			r.With(s.authMiddleware.RequirePermission("progress:read")).Get("/progress", s.handleGetProgress)
			r.With(s.authMiddleware.RequirePermission("progress:read")).Get("/events", s.handleEventsWS)

			r.Route("/tasks/{taskId}", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("progress:write")).Post("/start", s.handleStartTask)
				r.With(s.authMiddleware.RequirePermission("progress:write")).Post("/complete", s.handleCompleteTask)
				r.With(s.authMiddleware.RequirePermission("progress:write")).Post("/verify", s.handleVerifyTask)
			})

			// Admin knobs for demos and testing
			r.Route("/xp", func(r chi.Router) {
				r.With(s.authMiddleware.RequirePermission("admin:xp")).Post("/reset", s.handleResetXP)
				r.With(s.authMiddleware.RequirePermission("admin:xp")).Put("/level", s.handleSetLevel)
			})
		})

		// Leaderboard
		r.With(s.authMiddleware.RequirePermission("progress:read")).Get("/leaderboard", s.handleLeaderboard)
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
