package api

import (
	"net/http"
	"strconv"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/service"
)

// CategoryHandler serves /api/category.
type CategoryHandler struct {
	categories service.CategoryService
}

func NewCategoryHandler(categories service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /api/category.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list categories")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}

// Get handles GET /api/category/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve category")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, category)
}

// Create handles POST /api/category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create category")
		return
	}

	w.Header().Set("Location", "/api/category/"+strconv.FormatInt(category.ID, 10))
	shared.RespondWithJSON(w, r, http.StatusCreated, category)
}

// Update handles PUT /api/category/{id}.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, id, req.ID) {
		return
	}

	if _, err := h.categories.Update(r.Context(), id, req.Name); err != nil {
		HandleAPIError(w, r, err, "Failed to update category")
		return
	}
	shared.RespondNoContent(w)
}

// Delete handles DELETE /api/category/{id}.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete category")
		return
	}
	shared.RespondNoContent(w)
}
