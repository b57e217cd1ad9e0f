package service

import "github.com/phrazzld/bookreviews-api/internal/domain"

func toUserDTO(u *domain.User, pictureURL string) UserDTO {
	return UserDTO{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		ProfilePictureURL: pictureURL,
		RegisteredAt:      u.RegisteredAt,
		Role:              u.Role.String(),
	}
}

func toCategoryDTO(c *domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name}
}

func toCategoryDTOs(categories []*domain.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryDTO(c))
	}
	return out
}

// toBookDTO maps a book and the ratings of its reviews.
func toBookDTO(b *domain.Book, ratings []domain.Rating, coverURL string) BookDTO {
	return BookDTO{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Summary:       b.Summary,
		ISBN:          b.ISBN,
		Language:      b.Language,
		PublishedYear: b.PublishedYear,
		Publisher:     b.Publisher,
		Pages:         b.Pages,
		CoverImageURL: coverURL,
		CategoryID:    b.CategoryID,
		CategoryName:  b.CategoryName,
		AverageRating: domain.AverageRating(ratings),
		ReviewCount:   len(ratings),
	}
}

func toReviewDTO(r *domain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        r.ID,
		Rating:    r.Rating.Int(),
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		BookID:    r.BookID,
		BookTitle: r.BookTitle,
		UserID:    r.UserID,
		Username:  r.Username,
	}
}

func toReviewDTOs(reviews []*domain.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, toReviewDTO(r))
	}
	return out
}

func (i BookInput) details(coverPath string) domain.BookDetails {
	return domain.BookDetails{
		Title:          i.Title,
		Author:         i.Author,
		Summary:        i.Summary,
		ISBN:           i.ISBN,
		Language:       i.Language,
		PublishedYear:  i.PublishedYear,
		Publisher:      i.Publisher,
		Pages:          i.Pages,
		CoverImagePath: coverPath,
		CategoryID:     i.CategoryID,
	}
}
