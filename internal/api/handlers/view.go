package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/api/response"
	"github.com/RossFW/atlas-conquest/internal/cache"
	"github.com/RossFW/atlas-conquest/internal/charts"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/export"
	"github.com/RossFW/atlas-conquest/internal/metrics"
)

// ViewHandler serves rendered pages, their charts and their exports.
type ViewHandler struct {
	engine  *view.Engine
	store   *dataset.Store
	cache   cache.ViewCache
	charts  charts.ChartConfig
	metrics *metrics.ViewMetrics
	logger  *slog.Logger
}

// ViewHandlerConfig configures a ViewHandler.
type ViewHandlerConfig struct {
	Cache   cache.ViewCache // nil disables caching
	Charts  charts.ChartConfig
	Metrics *metrics.ViewMetrics
	Logger  *slog.Logger
}

// NewViewHandler creates a new ViewHandler.
func NewViewHandler(engine *view.Engine, store *dataset.Store, cfg ViewHandlerConfig) *ViewHandler {
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewViewMetrics()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ViewHandler{
		engine:  engine,
		store:   store,
		cache:   cfg.Cache,
		charts:  cfg.Charts,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
}

// GetView returns the view model for {page} and the query selectors.
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRequest(w, r)
	if !ok {
		return
	}

	snap := h.store.Current()
	ctx := r.Context()

	data, hit, err := h.cache.Get(ctx, snap.Version, req)
	if err != nil {
		h.logger.Warn("view cache read failed", "key", req.Key(), "error", err)
	}
	if hit {
		h.metrics.ObserveCacheHit()
		w.Header().Set("X-Cache", "hit")
		response.Raw(w, data)
		return
	}

	start := time.Now()
	m, err := h.engine.Render(snap, req)
	h.metrics.ObserveRender(time.Since(start), err)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err = json.Marshal(m)
	if err != nil {
		response.InternalError(w, fmt.Errorf("encode view: %w", err))
		return
	}
	if err := h.cache.Set(ctx, snap.Version, req, data); err != nil {
		h.logger.Warn("view cache write failed", "key", req.Key(), "error", err)
	}

	w.Header().Set("X-Cache", "miss")
	response.Raw(w, data)
}

// GetCharts returns the page's charts as an HTML document.
func (h *ViewHandler) GetCharts(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRequest(w, r)
	if !ok {
		return
	}
	m, err := h.engine.Render(h.store.Current(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, m, h.charts); err != nil {
		writeError(w, err)
		return
	}
	response.HTML(w, buf.Bytes())
}

// Export downloads the page's table rows as CSV or JSON.
func (h *ViewHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRequest(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	m, err := h.engine.Render(h.store.Current(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteView(&buf, m, format, false); err != nil {
		writeError(w, err)
		return
	}
	response.Attachment(w, format.ContentType(), export.GenerateFilename(req.Page, format), buf.Bytes())
}

// PeriodsResponse lists the selectable periods.
type PeriodsResponse struct {
	Periods  period.Keys `json:"periods"`
	Fallback string      `json:"fallback"`
	Version  uint64      `json:"version"`
}

// GetPeriods returns the configured periods and the loaded dataset version.
func (h *ViewHandler) GetPeriods(w http.ResponseWriter, _ *http.Request) {
	cfg := h.engine.Config()
	response.Success(w, PeriodsResponse{
		Periods:  cfg.Periods,
		Fallback: cfg.Fallback,
		Version:  h.store.Current().Version,
	})
}

// GetPages returns the page names in navigation order.
func (h *ViewHandler) GetPages(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, view.Pages())
}

// GetMetrics returns render, cache and reload statistics.
func (h *ViewHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.metrics.GetStats())
}

func parseRequest(w http.ResponseWriter, r *http.Request) (view.Request, bool) {
	page, err := view.ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		response.NotFound(w, err)
		return view.Request{}, false
	}
	return view.RequestFromQuery(page, r.URL.Query()), true
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, view.ErrUnknownPage), errors.Is(err, charts.ErrNoCharts):
		response.NotFound(w, err)
	case errors.Is(err, export.ErrNotExportable):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}
