package domain

import "fmt"

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a review score between MinRating and MaxRating inclusive.
// The zero value is not a valid rating; use NewRating.
type Rating int

// NewRating returns a Rating for value or ErrInvalidRating when the value
// is out of range.
func NewRating(value int) (Rating, error) {
	if value < MinRating || value > MaxRating {
		return 0, NewValidationError(
			"rating",
			fmt.Sprintf("must be between %d and %d", MinRating, MaxRating),
			ErrInvalidRating,
		)
	}
	return Rating(value), nil
}

// Int returns the rating as an int.
func (r Rating) Int() int {
	return int(r)
}

// IsValid reports whether r is within bounds.
func (r Rating) IsValid() bool {
	return r >= MinRating && r <= MaxRating
}

// AverageRating returns the arithmetic mean of ratings, or 0 when there are none.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += int(r)
	}
	return float64(sum) / float64(len(ratings))
}
