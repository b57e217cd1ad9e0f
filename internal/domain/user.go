package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// User field limits.
const (
	MinUsernameLength          = 3
	MaxUsernameLength          = 50
	MaxEmailLength             = 100
	MaxProfilePictureURLLength = 500
)

// User represents a registered account.
// Users are never hard-deleted; usernames and emails are unique ignoring case.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"` // Never expose password hash in JSON
	ProfilePictureURL string    `json:"profile_picture_url,omitempty"`
	Role              Role      `json:"role"`
	RegisteredAt      time.Time `json:"registered_at"`
}

// NewUser creates a User from already-hashed credentials.
// The caller is responsible for hashing the password before calling NewUser.
func NewUser(username, email, passwordHash string, role Role, now time.Time) (*User, error) {
	user := &User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		Role:         role,
		RegisteredAt: now.UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	n := utf8.RuneCountInString(strings.TrimSpace(u.Username))
	if n < MinUsernameLength || n > MaxUsernameLength {
		return NewValidationError("username", "must be between 3 and 50 characters", ErrValidation)
	}

	if err := validateEmail(u.Email); err != nil {
		return err
	}

	if u.PasswordHash == "" {
		return NewValidationError("password", "hash cannot be empty", ErrValidation)
	}

	if err := maxLength("profilePictureUrl", u.ProfilePictureURL, MaxProfilePictureURLLength); err != nil {
		return err
	}

	if !u.Role.IsValid() {
		return NewValidationError("role", "must be Admin or User", ErrInvalidRole)
	}

	return nil
}

// IsAdmin reports whether the user holds the Admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
