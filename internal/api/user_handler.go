package api

import (
	"net/http"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/service"
)

// UserHandler serves /api/user for the signed-in caller.
type UserHandler struct {
	users    service.UserService
	identity service.IdentityService
}

// NewUserHandler creates a UserHandler. identity handles password changes.
func NewUserHandler(users service.UserService, identity service.IdentityService) *UserHandler {
	return &UserHandler{users: users, identity: identity}
}

// GetProfile handles GET /api/user/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, err := h.users.GetProfile(r.Context(), caller.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.users.UpdateProfile(r.Context(), caller.UserID, req.input()); err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondNoContent(w)
}

// ChangePassword handles PUT /api/user/change-password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.identity.ChangePassword(r.Context(), caller.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	shared.RespondNoContent(w)
}
