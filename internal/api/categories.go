package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Veraticus/spice-ledger/internal/model"
	"github.com/Veraticus/spice-ledger/internal/service"
)

// CategoryRequest is the body of category create and update requests.
// Kind accepts 1/2 or "income"/"expense".
type CategoryRequest struct {
	Name     string             `json:"name"`
	Kind     model.CategoryKind `json:"kind"`
	Archived bool               `json:"archived"`
}

// CreateCategory handles POST /api/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name, req.Kind)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// ListCategories handles GET /api/categories?kind=&includeArchived=.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter service.CategoryFilter
	if raw := query.Get("kind"); raw != "" {
		kind, err := model.ParseCategoryKind(raw)
		if err != nil {
			writeBadRequest(w, "kind", "kind must be income, expense, 1 or 2")
			return
		}
		filter.Kind = &kind
	}
	if raw := query.Get("includeArchived"); raw != "" {
		include, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			writeBadRequest(w, "includeArchived", "includeArchived must be true or false")
			return
		}
		filter.IncludeArchived = include
	}

	categories, err := h.categories.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetCategory handles GET /api/categories/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// UpdateCategory handles PUT /api/categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), service.CategoryInput{
		Name:     req.Name,
		Kind:     req.Kind,
		Archived: req.Archived,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// ArchiveCategory handles DELETE /api/categories/{id}. Categories are archived,
// never removed.
func (h *Handler) ArchiveCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Archive(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
