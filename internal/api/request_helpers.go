package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
)

// getIdentity returns the caller placed in the context by the auth middleware.
func getIdentity(r *http.Request) (shared.Identity, bool) {
	return shared.IdentityFromContext(r.Context())
}

// requireIdentity is getIdentity for handlers behind Authenticate. It writes
// a 401 and returns false when the identity is missing.
func requireIdentity(w http.ResponseWriter, r *http.Request) (shared.Identity, bool) {
	id, ok := getIdentity(r)
	if !ok {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Warn("identity not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return shared.Identity{}, false
	}
	return id, true
}

// getPathID parses a positive int64 path parameter.
func getPathID(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handlePathID wraps getPathID and writes the error response on failure.
func handlePathID(w http.ResponseWriter, r *http.Request, paramName string) (int64, bool) {
	id, err := getPathID(r, paramName)
	if err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, false
	}
	return id, true
}

// decodeAndValidate reads the JSON body into v and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		HandleAPIError(w, r, err, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

// checkBodyID rejects a body whose id disagrees with the path id. A zero
// body id is treated as absent.
func checkBodyID(w http.ResponseWriter, r *http.Request, pathID, bodyID int64) bool {
	if bodyID != 0 && bodyID != pathID {
		shared.RespondWithError(w, r, http.StatusBadRequest, "ID in body does not match ID in path")
		return false
	}
	return true
}
