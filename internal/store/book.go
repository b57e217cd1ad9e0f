package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// BookFilter narrows BookStore.List.
type BookFilter struct {
	// Search matches title or author as a case-insensitive substring.
	Search string
	// CategoryID restricts results to one category when non-zero.
	CategoryID int64
}

// BookStore defines the interface for book persistence.
// Read operations populate Book.CategoryName.
type BookStore interface {
	// Create saves a new book and sets book.ID.
	// Returns ErrInvalidEntity if the category does not exist.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book. Returns ErrBookNotFound if missing.
	GetByID(ctx context.Context, id int64) (*domain.Book, error)

	// List returns books matching filter ordered by title.
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, error)

	// Update writes every editable field of book.
	// Returns ErrBookNotFound if the book does not exist.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book and, by cascade, its reviews.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a BookStore bound to the given transaction.
	WithTx(tx *sql.Tx) BookStore
}
