package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/metrics"
	"github.com/phrazzld/bookreviews-api/internal/service"
)

// ReviewHandler serves /api/review. Writes act on behalf of the caller and
// are refused for reviews written by someone else.
type ReviewHandler struct {
	reviews service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(reviews service.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger.With(slog.String("component", "review_handler")),
	}
}

// ListByBook handles GET /api/review/book/{bookId}.
func (h *ReviewHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := handlePathID(w, r, "bookId")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByBook(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviews)
}

// ListMine handles GET /api/review/user.
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reviews)
}

// Create handles POST /api/review.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.reviews.Create(r.Context(), caller.UserID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create review")
		return
	}

	metrics.RecordReviewCreated()
	w.Header().Set("Location", "/api/review/book/"+strconv.FormatInt(review.BookID, 10))
	shared.RespondWithJSON(w, r, http.StatusCreated, review)
}

// Update handles PUT /api/review/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if !checkBodyID(w, r, id, req.ID) {
		return
	}

	if _, err := h.reviews.Update(r.Context(), caller.UserID, id, req.input()); err != nil {
		HandleAPIError(w, r, err, "Failed to update review")
		return
	}
	shared.RespondNoContent(w)
}

// Delete handles DELETE /api/review/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := handlePathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.reviews.Delete(r.Context(), caller.UserID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete review")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("review deleted via API",
		slog.Int64("review_id", id),
		slog.Int64("user_id", caller.UserID))
	shared.RespondNoContent(w)
}
