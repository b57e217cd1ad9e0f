package domain

import "strings"

// Book field limits.
const (
	MaxTitleLength          = 200
	MaxAuthorLength         = 150
	MaxSummaryLength        = 2000
	MaxISBNLength           = 20
	MaxLanguageLength       = 50
	MaxPublisherLength      = 100
	MaxCoverImagePathLength = 500
	MinPublishedYear        = 1000
	MaxPublishedYear        = 9999
)

// Book is a catalogue entry. Only administrators create or modify books.
//
// CategoryName is populated by reads that join the owning category and is
// ignored on writes.
type Book struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	Summary        string `json:"summary,omitempty"`
	ISBN           string `json:"isbn,omitempty"`
	Language       string `json:"language,omitempty"`
	PublishedYear  int    `json:"published_year,omitempty"` // 0 means unknown
	Publisher      string `json:"publisher,omitempty"`
	Pages          int    `json:"pages,omitempty"`
	CoverImagePath string `json:"cover_image_path,omitempty"`
	CategoryID     int64  `json:"category_id"`
	CategoryName   string `json:"category_name,omitempty"`
}

// BookDetails carries the editable fields of a Book.
type BookDetails struct {
	Title          string
	Author         string
	Summary        string
	ISBN           string
	Language       string
	PublishedYear  int
	Publisher      string
	Pages          int
	CoverImagePath string
	CategoryID     int64
}

// NewBook creates a Book from details, trimming surrounding whitespace.
func NewBook(details BookDetails) (*Book, error) {
	book := &Book{}
	book.Apply(details)

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Apply overwrites the editable fields of b with details.
// It does not validate; call Validate afterwards.
func (b *Book) Apply(details BookDetails) {
	b.Title = strings.TrimSpace(details.Title)
	b.Author = strings.TrimSpace(details.Author)
	b.Summary = strings.TrimSpace(details.Summary)
	b.ISBN = strings.TrimSpace(details.ISBN)
	b.Language = strings.TrimSpace(details.Language)
	b.PublishedYear = details.PublishedYear
	b.Publisher = strings.TrimSpace(details.Publisher)
	b.Pages = details.Pages
	b.CoverImagePath = details.CoverImagePath
	b.CategoryID = details.CategoryID
}

// Validate checks if the Book has valid data.
func (b *Book) Validate() error {
	if err := requireText("title", b.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := requireText("author", b.Author, MaxAuthorLength); err != nil {
		return err
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"summary", b.Summary, MaxSummaryLength},
		{"isbn", b.ISBN, MaxISBNLength},
		{"language", b.Language, MaxLanguageLength},
		{"publisher", b.Publisher, MaxPublisherLength},
		{"coverImage", b.CoverImagePath, MaxCoverImagePathLength},
	}
	for _, l := range limits {
		if err := maxLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if b.PublishedYear != 0 &&
		(b.PublishedYear < MinPublishedYear || b.PublishedYear > MaxPublishedYear) {
		return NewValidationError("publishedYear", "must be a four-digit year", ErrValidation)
	}

	if b.Pages < 0 {
		return NewValidationError("pages", "cannot be negative", ErrValidation)
	}

	if b.CategoryID <= 0 {
		return NewValidationError("categoryId", "is required", ErrInvalidID)
	}

	return nil
}

// ValidateBookDetails checks details without building a Book.
func ValidateBookDetails(details BookDetails) error {
	var b Book
	b.Apply(details)
	return b.Validate()
}
