package service

import "time"

// UserDTO is the public view of an account.
type UserDTO struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	RegisteredAt      time.Time `json:"registeredAt"`
	Role              string    `json:"role"`
}

// TokenDTO is returned by a successful login.
type TokenDTO struct {
	Token string `json:"token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// CategoryDTO is the public view of a category.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BookDTO is the public view of a book with its review aggregates.
type BookDTO struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Summary       string  `json:"summary"`
	ISBN          string  `json:"isbn"`
	Language      string  `json:"language"`
	PublishedYear int     `json:"publishedYear"`
	Publisher     string  `json:"publisher"`
	Pages         int     `json:"pages"`
	CoverImageURL string  `json:"coverImageUrl,omitempty"`
	CategoryID    int64   `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// ReviewDTO is the public view of a review.
type ReviewDTO struct {
	ID        int64      `json:"id"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	BookID    int64      `json:"bookId"`
	BookTitle string     `json:"bookTitle,omitempty"`
	UserID    int64      `json:"userId"`
	Username  string     `json:"username,omitempty"`
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Role is optional; empty means User.
	Role string
}

// BookInput carries the editable fields of a book.
//
// CoverImage is either a data:image URL to upload, an existing URL or key to
// keep as is, or empty. On update an empty CoverImage keeps the current cover.
type BookInput struct {
	Title         string
	Author        string
	Summary       string
	ISBN          string
	Language      string
	PublishedYear int
	Publisher     string
	Pages         int
	CategoryID    int64
	CoverImage    string
}

// ReviewInput carries a new or edited review.
type ReviewInput struct {
	BookID  int64
	Rating  int
	Comment string
}

// ProfileInput carries profile changes. ProfilePicture follows the same
// rules as BookInput.CoverImage.
type ProfileInput struct {
	Username       string
	Email          string
	ProfilePicture string
}

// ResetIssue describes the outcome of a forgot-password request. Token is
// empty when the email is unknown.
type ResetIssue struct {
	Token     string
	ExpiresAt time.Time
}
