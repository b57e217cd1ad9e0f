package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	// Create saves a new category and sets category.ID.
	// Returns ErrCategoryExists when the name is taken, ignoring case.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category. Returns ErrCategoryNotFound if missing.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// GetByName retrieves a category by name, ignoring case.
	GetByName(ctx context.Context, name string) (*domain.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]*domain.Category, error)

	// Update renames a category.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category.
	// Returns ErrCategoryInUse if books still reference it.
	Delete(ctx context.Context, id int64) error

	// CountBooks returns how many books belong to the category.
	CountBooks(ctx context.Context, id int64) (int, error)

	// WithTx returns a CategoryStore bound to the given transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
