package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// BookHandler serves /api/book.
type BookHandler struct {
	books  service.BookService
	logger *slog.Logger
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(books service.BookService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookHandler{
		books:  books,
		logger: logger.With(slog.String("component", "book_handler")),
	}
}

// List handles GET /api/book?searchTerm=&categoryId=.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.BookFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("searchTerm")),
	}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			HandleAPIError(w, r,
				domain.NewValidationError("categoryId", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		filter.CategoryID = id
	}

	books, err := h.books.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list books")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, books)
}

// Get handles GET /api/book/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	book, err := h.books.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve book")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, book)
}

// Create handles POST /api/book.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	book, err := h.books.Create(r.Context(), req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create book")
		return
	}

	w.Header().Set("Location", "/api/book/"+strconv.FormatInt(book.ID, 10))
	shared.RespondWithJSON(w, r, http.StatusCreated, book)
}

// Update handles PUT /api/book/{id}.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var req BookRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, id, req.ID) {
		return
	}

	if _, err := h.books.Update(r.Context(), id, req.input()); err != nil {
		HandleAPIError(w, r, err, "Failed to update book")
		return
	}
	shared.RespondNoContent(w)
}

// Delete handles DELETE /api/book/{id}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete book")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("book deleted via API", slog.Int64("book_id", id))
	shared.RespondNoContent(w)
}
