package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RossFW/atlas-conquest/internal/api/handlers"
	"github.com/RossFW/atlas-conquest/internal/api/response"
	"github.com/RossFW/atlas-conquest/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint (no JSON content-type requirement)
	s.router.Get("/ws", s.wsHub.ServeWs)

	s.router.Route("/api/v1", func(r chi.Router) {
		viewHandler := handlers.NewViewHandler(s.engine, s.store, handlers.ViewHandlerConfig{
			Cache:   s.cache,
			Charts:  s.cfg.Charts,
			Metrics: s.metrics,
			Logger:  s.logger,
		})
		r.Get("/pages", viewHandler.GetPages)
		r.Get("/periods", viewHandler.GetPeriods)
		r.Get("/views/{page}", viewHandler.GetView)
		r.Get("/charts/{page}", viewHandler.GetCharts)
		r.Get("/export/{page}", viewHandler.Export)
		r.Get("/metrics", viewHandler.GetMetrics)

		savedHandler := handlers.NewSavedHandler(s.saved)
		r.Route("/saved", func(r chi.Router) {
			r.Get("/", savedHandler.ListSaved)
			r.Post("/", savedHandler.CreateSaved)
			r.Get("/{id}", savedHandler.GetSaved)
			r.Put("/{id}", savedHandler.UpdateSaved)
			r.Delete("/{id}", savedHandler.DeleteSaved)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"service":         "atlas-analytics-api",
		"version":         version.GetVersion(),
		"dataset_version": s.store.Current().Version,
		"clients":         s.wsHub.ClientCount(),
	})
}
