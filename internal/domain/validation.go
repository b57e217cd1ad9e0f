package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// requireText checks that value is non-blank and at most max characters long.
func requireText(field, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "cannot be empty", ErrValidation)
	}
	return maxLength(field, value, max)
}

// maxLength checks that value is at most max characters long.
func maxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return NewValidationError(field, fmt.Sprintf("cannot exceed %d characters", max), ErrValidation)
	}
	return nil
}

// validateEmail checks the address format and length.
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "cannot be empty", ErrInvalidEmail)
	}
	if err := validate.Var(email, "email"); err != nil {
		return NewValidationError("email", "has an invalid format", ErrInvalidEmail)
	}
	return maxLength("email", email, MaxEmailLength)
}
