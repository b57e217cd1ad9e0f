package domain

import (
	"strings"
	"time"
)

// MaxCommentLength is the longest accepted review comment.
const MaxCommentLength = 1000

// Review is a user's rating and comment on a book.
// A user may review a given book at most once, and only the author of a
// review may change or remove it.
//
// Username and BookTitle are filled in by reads that join users and books.
type Review struct {
	ID        int64      `json:"id"`
	Rating    Rating     `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	BookID    int64      `json:"book_id"`
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username,omitempty"`
	BookTitle string     `json:"book_title,omitempty"`
}

// NewReview creates a Review by userID for bookID.
func NewReview(userID, bookID int64, rating Rating, comment string, now time.Time) (*Review, error) {
	review := &Review{
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now.UTC(),
		BookID:    bookID,
		UserID:    userID,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Edit replaces rating and comment and stamps UpdatedAt.
func (r *Review) Edit(rating Rating, comment string, now time.Time) error {
	comment = strings.TrimSpace(comment)
	if !rating.IsValid() {
		return NewValidationError("rating", "must be between 1 and 5", ErrInvalidRating)
	}
	if err := requireText("comment", comment, MaxCommentLength); err != nil {
		return err
	}

	updated := now.UTC()
	r.Rating = rating
	r.Comment = comment
	r.UpdatedAt = &updated
	return nil
}

// IsOwnedBy reports whether userID wrote the review.
func (r *Review) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

// Validate checks if the Review has valid data.
func (r *Review) Validate() error {
	if !r.Rating.IsValid() {
		return NewValidationError("rating", "must be between 1 and 5", ErrInvalidRating)
	}
	if err := requireText("comment", r.Comment, MaxCommentLength); err != nil {
		return err
	}
	if r.BookID <= 0 {
		return NewValidationError("bookId", "is required", ErrInvalidID)
	}
	if r.UserID <= 0 {
		return NewValidationError("userId", "is required", ErrInvalidID)
	}
	return nil
}
