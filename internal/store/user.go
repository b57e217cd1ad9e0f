package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
// Username and email lookups ignore case.
type UserStore interface {
	// Create saves a new user and sets user.ID.
	// Returns ErrEmailExists or ErrUsernameExists on a uniqueness conflict.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email address.
	// Returns ErrUserNotFound if no user has that email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if no user has that username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// UpdateProfile writes username, email and profile picture.
	// Returns ErrUserNotFound, ErrEmailExists or ErrUsernameExists.
	UpdateProfile(ctx context.Context, user *domain.User) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// UpdateRole changes the role of a user.
	UpdateRole(ctx context.Context, id int64, role domain.Role) error

	// WithTx returns a UserStore bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
