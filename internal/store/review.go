package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// ReviewStore defines the interface for review persistence.
// Read operations populate Review.Username and Review.BookTitle.
type ReviewStore interface {
	// Create saves a new review and sets review.ID.
	// Returns ErrReviewExists if the user already reviewed the book.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID retrieves a review. Returns ErrReviewNotFound if missing.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// GetByUserAndBook returns the review userID wrote for bookID.
	GetByUserAndBook(ctx context.Context, userID, bookID int64) (*domain.Review, error)

	// ListByBook returns the reviews of a book, newest first.
	ListByBook(ctx context.Context, bookID int64) ([]*domain.Review, error)

	// ListByUser returns the reviews written by a user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]*domain.Review, error)

	// RatingsForBooks returns the ratings of each listed book.
	// Books without reviews are absent from the map.
	RatingsForBooks(ctx context.Context, bookIDs []int64) (map[int64][]domain.Rating, error)

	// Update writes rating, comment and updated_at.
	Update(ctx context.Context, review *domain.Review) error

	// Delete removes a review. Returns ErrReviewNotFound if missing.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a ReviewStore bound to the given transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
