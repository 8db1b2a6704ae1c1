package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/api/response"
	"github.com/RossFW/atlas-conquest/internal/storage"
)

var errSavedViewsDisabled = errors.New("saved views are disabled")

// SavedHandler handles saved view requests.
type SavedHandler struct {
	repo storage.SavedViewRepository
}

// NewSavedHandler creates a new SavedHandler. A nil repository answers
// every request with 503.
func NewSavedHandler(repo storage.SavedViewRepository) *SavedHandler {
	return &SavedHandler{repo: repo}
}

// SaveViewRequest represents a request to create or update a saved view.
type SaveViewRequest struct {
	Name    string       `json:"name"`
	Request view.Request `json:"request"`
}

// ListSaved returns all saved views, optionally for one page.
func (h *SavedHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	var page view.Page
	if p := r.URL.Query().Get("page"); p != "" {
		parsed, err := view.ParsePage(p)
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		page = parsed
	}

	views, err := h.repo.List(r.Context(), page)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if views == nil {
		views = []*storage.SavedView{}
	}
	response.Success(w, views)
}

// CreateSaved stores a new saved view.
func (h *SavedHandler) CreateSaved(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	var req SaveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	sv, err := h.repo.Create(r.Context(), req.Name, req.Request)
	if err != nil {
		writeSavedError(w, err)
		return
	}
	response.Created(w, sv)
}

// GetSaved returns one saved view.
func (h *SavedHandler) GetSaved(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	sv, err := h.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeSavedError(w, err)
		return
	}
	response.Success(w, sv)
}

// UpdateSaved replaces the request of a saved view.
func (h *SavedHandler) UpdateSaved(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	var req SaveViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	sv, err := h.repo.Update(r.Context(), chi.URLParam(r, "id"), req.Request)
	if err != nil {
		writeSavedError(w, err)
		return
	}
	response.Success(w, sv)
}

// DeleteSaved removes a saved view.
func (h *SavedHandler) DeleteSaved(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	if err := h.repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeSavedError(w, err)
		return
	}
	response.NoContent(w)
}

func (h *SavedHandler) enabled(w http.ResponseWriter) bool {
	if h.repo == nil {
		response.ServiceUnavailable(w, errSavedViewsDisabled)
		return false
	}
	return true
}

func writeSavedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrViewNotFound):
		response.NotFound(w, err)
	case errors.Is(err, storage.ErrDuplicateName):
		response.Conflict(w, err)
	case errors.Is(err, storage.ErrEmptyName), errors.Is(err, view.ErrUnknownPage):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}
