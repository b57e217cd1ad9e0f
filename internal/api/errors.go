package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bookreviews-api/internal/api/shared"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

const unexpectedErrorMessage = "An unexpected error occurred"

// MapErrorToStatusCode maps internal errors to HTTP status codes so that
// handlers never decide statuses from error strings.
func MapErrorToStatusCode(err error) int {
	switch {
	// Reset tokens are validated as JWTs, so this must precede the auth errors.
	case errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest

	// Authentication errors
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrRoleNotAllowed):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Bad request errors, including uniqueness and in-use conflicts
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrDuplicateCategory),
		errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, service.ErrUnknownCategory),
		errors.Is(err, service.ErrUnknownBook),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, shared.ErrInvalidJSON),
		store.IsDuplicateError(err),
		errors.Is(err, store.ErrInUse),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return unexpectedErrorMessage
	}

	var verr *domain.ValidationError
	switch {
	case errors.Is(err, service.ErrInvalidResetToken):
		return "Invalid or expired reset token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"

	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization header required"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	case errors.Is(err, service.ErrNotOwner):
		return "You can only change your own reviews"

	case errors.Is(err, service.ErrRoleNotAllowed):
		return "Role cannot be requested at registration"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"

	case errors.Is(err, store.ErrCategoryNotFound):
		return "Category not found"

	case errors.Is(err, store.ErrReviewNotFound):
		return "Review not found"

	case store.IsNotFoundError(err):
		return "Resource not found"

	case errors.As(err, &verr) && verr.Field != "":
		return fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"

	case errors.Is(err, service.ErrIncorrectPassword):
		return "Current password is incorrect"

	case errors.Is(err, service.ErrDuplicateUsername):
		return "Username is already taken"

	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, store.ErrEmailExists):
		return "Email is already registered"

	case errors.Is(err, service.ErrDuplicateCategory):
		return "A category with this name already exists"

	case errors.Is(err, service.ErrDuplicateReview):
		return "You have already reviewed this book"

	case errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, store.ErrInUse):
		return "Category has books and cannot be deleted"

	case errors.Is(err, service.ErrUnknownCategory):
		return "Category does not exist"

	case errors.Is(err, service.ErrUnknownBook):
		return "Book does not exist"

	case errors.Is(err, service.ErrInvalidImage):
		return "Invalid image"

	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"

	case errors.Is(err, shared.ErrInvalidJSON):
		return "Invalid request format"

	case store.IsDuplicateError(err):
		return "Resource already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return unexpectedErrorMessage
	}
}

// HandleAPIError writes the mapped status and safe message for err. When no
// specific message exists, defaultMsg is sent instead of the generic text.
// Failures the client caused are logged at DEBUG and server faults at ERROR.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if message == unexpectedErrorMessage && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 for a request body that failed
// validation, naming the first offending field.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var message string
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		message = fmt.Sprintf("Invalid %s: %s", verr.Field, verr.Message)
	} else {
		message = SanitizeValidationError(err)
	}

	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, message, err)
}

// SanitizeValidationError turns a validator error into a message such as
// "Invalid Email: required field" without exposing struct names.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Example: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	errMsg := err.Error()
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				if len(fieldParts) >= 5 && fieldParts[3] != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fieldParts[3]))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte", "gt":
		return "too small"
	case "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	case "nefield":
		return "must differ from the current value"
	default:
		return "validation failed"
	}
}
