package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// BookService manages the catalogue.
type BookService interface {
	// List returns books matching filter with their review aggregates.
	List(ctx context.Context, filter store.BookFilter) ([]BookDTO, error)

	// Get returns one book with its review aggregates.
	Get(ctx context.Context, id int64) (BookDTO, error)

	// Create adds a book. Returns ErrUnknownCategory when the category does
	// not exist.
	Create(ctx context.Context, in BookInput) (BookDTO, error)

	// Update replaces the editable fields of a book.
	Update(ctx context.Context, id int64, in BookInput) (BookDTO, error)

	// Delete removes a book, its reviews and its cover image.
	Delete(ctx context.Context, id int64) error
}

type bookService struct {
	books   store.BookStore
	reviews store.ReviewStore
	uow     store.UnitOfWork
	images  *images
	logger  *slog.Logger
}

// NewBookService creates a BookService. objects may be nil, in which case
// cover uploads are rejected.
func NewBookService(
	books store.BookStore,
	reviews store.ReviewStore,
	uow store.UnitOfWork,
	objects objectstore.ObjectStore,
	logger *slog.Logger,
) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "book_service"))

	return &bookService{
		books:   books,
		reviews: reviews,
		uow:     uow,
		images:  newImages(objects, logger),
		logger:  logger,
	}
}

func (s *bookService) List(ctx context.Context, filter store.BookFilter) ([]BookDTO, error) {
	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	ratings, err := s.reviews.RatingsForBooks(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	out := make([]BookDTO, 0, len(books))
	for _, b := range books {
		out = append(out, toBookDTO(b, ratings[b.ID], s.images.url(ctx, b.CoverImagePath)))
	}
	return out, nil
}

func (s *bookService) Get(ctx context.Context, id int64) (BookDTO, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return BookDTO{}, fmt.Errorf("failed to retrieve book: %w", err)
	}
	return s.toDTO(ctx, s.reviews, book)
}

func (s *bookService) toDTO(ctx context.Context, reviews store.ReviewStore, book *domain.Book) (BookDTO, error) {
	ratings, err := reviews.RatingsForBooks(ctx, []int64{book.ID})
	if err != nil {
		return BookDTO{}, fmt.Errorf("failed to load ratings: %w", err)
	}
	return toBookDTO(book, ratings[book.ID], s.images.url(ctx, book.CoverImagePath)), nil
}

// requireCategory loads the category of a book or fails with ErrUnknownCategory.
func requireCategory(ctx context.Context, categories store.CategoryStore, id int64) (*domain.Category, error) {
	category, err := categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrCategoryNotFound) {
			return nil, ErrUnknownCategory
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	return category, nil
}

func (s *bookService) Create(ctx context.Context, in BookInput) (BookDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		book  *domain.Book
		cover upload
		dto   BookDTO
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := domain.ValidateBookDetails(in.details("")); err != nil {
			return err
		}
		category, err := requireCategory(ctx, tx.Categories, in.CategoryID)
		if err != nil {
			return err
		}

		cover, err = s.images.resolve(ctx, coverPrefix, "cover", in.CoverImage, "")
		if err != nil {
			return err
		}

		book, err = domain.NewBook(in.details(cover.Path))
		if err != nil {
			return err
		}
		if err := tx.Books.Create(ctx, book); err != nil {
			return err
		}
		book.CategoryName = category.Name

		dto = toBookDTO(book, nil, s.images.url(ctx, book.CoverImagePath))
		return nil
	})
	if err != nil {
		s.images.discard(ctx, cover)
		if isClientError(err) {
			return BookDTO{}, err
		}
		log.Error("failed to create book", slog.String("error", err.Error()))
		return BookDTO{}, fmt.Errorf("failed to create book: %w", err)
	}

	log.Info("book created", slog.Int64("book_id", book.ID))
	return dto, nil
}

func (s *bookService) Update(ctx context.Context, id int64, in BookInput) (BookDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		book     *domain.Book
		oldCover string
		cover    upload
		dto      BookDTO
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		book, err = tx.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		oldCover = book.CoverImagePath

		if err := domain.ValidateBookDetails(in.details(oldCover)); err != nil {
			return err
		}
		category, err := requireCategory(ctx, tx.Categories, in.CategoryID)
		if err != nil {
			return err
		}

		cover, err = s.images.resolve(ctx, coverPrefix, "cover", in.CoverImage, oldCover)
		if err != nil {
			return err
		}

		book.Apply(in.details(cover.Path))
		if err := tx.Books.Update(ctx, book); err != nil {
			return err
		}
		book.CategoryName = category.Name

		dto, err = s.toDTO(ctx, tx.Reviews, book)
		return err
	})
	if err != nil {
		s.images.discard(ctx, cover)
		if isClientError(err) {
			return BookDTO{}, err
		}
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return BookDTO{}, fmt.Errorf("failed to update book: %w", err)
	}

	s.images.replaced(ctx, oldCover, book.CoverImagePath)

	log.Info("book updated", slog.Int64("book_id", id))
	return dto, nil
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	var cover string
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		book, err := tx.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		cover = book.CoverImagePath
		return tx.Books.Delete(ctx, id)
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return err
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	s.images.remove(ctx, cover)

	logger.FromContextOrDefault(ctx, s.logger).Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// isClientError reports whether err is caused by the request rather than
// by infrastructure.
func isClientError(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidID) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrInvalidImage) ||
		store.IsNotFoundError(err)
}
