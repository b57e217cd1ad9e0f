package api

import (
	"github.com/phrazzld/bookreviews-api/internal/service"
)

// Request payloads. JSON names are camelCase. Tag limits mirror the domain
// rules so malformed input is rejected before it reaches a service.

// RegisterRequest is the payload of POST /api/auth/register.
type RegisterRequest struct {
	Username        string `json:"username"        validate:"required,min=3,max=50"`
	Email           string `json:"email"           validate:"required,email,max=100"`
	Password        string `json:"password"        validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role"            validate:"omitempty,oneof=Admin User admin user"`
}

func (r RegisterRequest) input() service.RegisterInput {
	return service.RegisterInput{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Role:     r.Role,
	}
}

// LoginRequest is the payload of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest is the payload of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the payload of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	Token           string `json:"token"           validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=NewPassword"`
}

// ChangePasswordRequest is the payload of PUT /api/user/change-password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=NewPassword"`
}

// UpdateProfileRequest is the payload of PUT /api/user/profile.
// ProfilePictureURL may carry a data:image URL to upload.
type UpdateProfileRequest struct {
	Username          string `json:"username"          validate:"required,min=3,max=50"`
	Email             string `json:"email"             validate:"required,email,max=100"`
	ProfilePictureURL string `json:"profilePictureUrl"`
}

func (r UpdateProfileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		Username:       r.Username,
		Email:          r.Email,
		ProfilePicture: r.ProfilePictureURL,
	}
}

// BookRequest is the payload of POST and PUT /api/book. CoverImage may be a
// data:image URL; CoverImageURL is accepted as an alias so a BookDTO can be
// sent back unchanged.
type BookRequest struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"         validate:"required,max=200"`
	Author        string `json:"author"        validate:"required,max=150"`
	Summary       string `json:"summary"       validate:"max=2000"`
	ISBN          string `json:"isbn"          validate:"max=20"`
	Language      string `json:"language"      validate:"max=50"`
	PublishedYear int    `json:"publishedYear" validate:"omitempty,gte=1000,lte=9999"`
	Publisher     string `json:"publisher"     validate:"max=100"`
	Pages         int    `json:"pages"         validate:"gte=0"`
	CategoryID    int64  `json:"categoryId"    validate:"required,gt=0"`
	CoverImage    string `json:"coverImage"`
	CoverImageURL string `json:"coverImageUrl"`
}

func (r BookRequest) input() service.BookInput {
	cover := r.CoverImage
	if cover == "" {
		cover = r.CoverImageURL
	}
	return service.BookInput{
		Title:         r.Title,
		Author:        r.Author,
		Summary:       r.Summary,
		ISBN:          r.ISBN,
		Language:      r.Language,
		PublishedYear: r.PublishedYear,
		Publisher:     r.Publisher,
		Pages:         r.Pages,
		CategoryID:    r.CategoryID,
		CoverImage:    cover,
	}
}

// CategoryRequest is the payload of POST and PUT /api/category.
type CategoryRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100"`
}

// ReviewRequest is the payload of POST and PUT /api/review.
type ReviewRequest struct {
	ID      int64  `json:"id"`
	BookID  int64  `json:"bookId"  validate:"required,gt=0"`
	Rating  int    `json:"rating"  validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=1000"`
}

func (r ReviewRequest) input() service.ReviewInput {
	return service.ReviewInput{
		BookID:  r.BookID,
		Rating:  r.Rating,
		Comment: r.Comment,
	}
}
