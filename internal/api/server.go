// Package api exposes rendered views over HTTP and pushes live view
// updates over WebSocket.
package api

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/api/websocket"
	"github.com/RossFW/atlas-conquest/internal/cache"
	"github.com/RossFW/atlas-conquest/internal/charts"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/metrics"
	"github.com/RossFW/atlas-conquest/internal/storage"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *Config

	engine  *view.Engine
	store   *dataset.Store
	cache   cache.ViewCache
	saved   storage.SavedViewRepository
	metrics *metrics.ViewMetrics
	logger  *slog.Logger

	// WebSocket hub for live views
	wsHub *websocket.Hub

	unsubscribe func()
}

// Config holds configuration for the API server.
type Config struct {
	Port        int
	CORSOrigins []string
	RateLimit   float64 // Requests per second per client IP, 0 disables
	RateBurst   int

	SearchDebounce time.Duration
	Charts         charts.ChartConfig
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:        8080,
		CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		RateLimit:   20,
		RateBurst:   40,
		Charts:      charts.DefaultChartConfig(),
	}
}

// Deps are the collaborators the server renders with.
type Deps struct {
	Engine  *view.Engine
	Store   *dataset.Store
	Cache   cache.ViewCache             // nil disables caching
	Saved   storage.SavedViewRepository // nil disables saved views
	Metrics *metrics.ViewMetrics
	Logger  *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *Config, deps Deps) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewViewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		engine:  deps.Engine,
		store:   deps.Store,
		cache:   deps.Cache,
		saved:   deps.Saved,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		wsHub: websocket.NewHub(websocket.HubConfig{
			Engine:         deps.Engine,
			Store:          deps.Store,
			Saved:          deps.Saved,
			SearchDebounce: cfg.SearchDebounce,
		}),
	}
	s.unsubscribe = deps.Store.OnSwap(s.onSwap)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Cache", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.cfg.RateLimit > 0 {
		s.router.Use(newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware)
	}

	// Content-Type enforcement for POST/PUT only
	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// onSwap drops cached views of older snapshots and tells clients a new
// dataset is live. Each client session re-renders on its own.
func (s *Server) onSwap(snap *dataset.Snapshot) {
	s.metrics.ObserveReload(time.Since(snap.LoadedAt))
	go func() {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type: websocket.EventReloaded,
			Data: map[string]any{"version": snap.Version, "loaded_at": snap.LoadedAt},
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := s.cache.Purge(ctx, snap.Version)
		if err != nil {
			s.logger.Warn("view cache purge failed", "version", snap.Version, "error", err)
			return
		}
		if n > 0 {
			s.logger.Debug("purged stale views", "count", n, "version", snap.Version)
		}
	}()
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the hub and the API server in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("[API] Server starting on port %d", s.cfg.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[API] Server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and its WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	s.wsHub.Stop()

	if s.httpServer == nil {
		return nil
	}

	log.Println("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.cfg.Port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
