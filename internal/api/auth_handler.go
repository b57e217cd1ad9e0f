package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/metrics"
	"github.com/phrazzld/bookreviews-api/internal/service"
)

const (
	forgotPasswordMessage = "If the email is registered, a reset link has been sent"
	resetPasswordMessage  = "Password has been reset"
)

// AuthHandler handles registration, login and password reset requests.
type AuthHandler struct {
	identity         service.IdentityService
	exposeResetToken bool
	logger           *slog.Logger
}

// NewAuthHandler creates an AuthHandler. When exposeResetToken is set the
// forgot-password response includes the issued token, which is only meant
// for development setups without a mail relay.
func NewAuthHandler(identity service.IdentityService, exposeResetToken bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		identity:         identity,
		exposeResetToken: exposeResetToken,
		logger:           logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.identity.Register(r.Context(), req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	metrics.RecordRegistration()
	shared.RespondWithJSON(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.RecordLogin(false)
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
				GetSafeErrorMessage(err), err, shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	metrics.RecordLogin(true)
	shared.RespondWithJSON(w, r, http.StatusOK, token)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is the
// same whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	issue, err := h.identity.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to process password reset request")
		return
	}

	resp := shared.MessageResponse{Message: forgotPasswordMessage}
	if issue.Token != "" {
		metrics.RecordPasswordReset(metrics.ResetIssued)
		if h.exposeResetToken {
			logger.FromContextOrDefault(r.Context(), h.logger).
				Warn("returning password reset token in response")
			resp.ResetToken = issue.Token
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.identity.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			metrics.RecordPasswordReset(metrics.ResetRejected)
		}
		HandleAPIError(w, r, err, "Failed to reset password")
		return
	}

	metrics.RecordPasswordReset(metrics.ResetRedeemed)
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: resetPasswordMessage})
}
