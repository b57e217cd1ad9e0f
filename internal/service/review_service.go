package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// ReviewService manages reviews. Only the author of a review may change it.
type ReviewService interface {
	// ListByBook returns the reviews of a book, newest first.
	ListByBook(ctx context.Context, bookID int64) ([]ReviewDTO, error)

	// ListByUser returns the reviews written by a user, newest first.
	ListByUser(ctx context.Context, userID int64) ([]ReviewDTO, error)

	// Create adds a review by userID. Returns ErrUnknownBook or ErrDuplicateReview.
	Create(ctx context.Context, userID int64, in ReviewInput) (ReviewDTO, error)

	// Update edits a review. Returns ErrNotOwner when userID did not write it.
	Update(ctx context.Context, userID, reviewID int64, in ReviewInput) (ReviewDTO, error)

	// Delete removes a review. Returns ErrNotOwner when userID did not write it.
	Delete(ctx context.Context, userID, reviewID int64) error
}

type reviewService struct {
	reviews store.ReviewStore
	uow     store.UnitOfWork
	clock   func() time.Time
	logger  *slog.Logger
}

// NewReviewService creates a ReviewService. A nil clock defaults to time.Now.
func NewReviewService(
	reviews store.ReviewStore,
	uow store.UnitOfWork,
	clock func() time.Time,
	logger *slog.Logger,
) ReviewService {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewService{
		reviews: reviews,
		uow:     uow,
		clock:   clock,
		logger:  logger.With(slog.String("component", "review_service")),
	}
}

func (s *reviewService) ListByBook(ctx context.Context, bookID int64) ([]ReviewDTO, error) {
	reviews, err := s.reviews.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for book: %w", err)
	}
	return toReviewDTOs(reviews), nil
}

func (s *reviewService) ListByUser(ctx context.Context, userID int64) ([]ReviewDTO, error) {
	reviews, err := s.reviews.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for user: %w", err)
	}
	return toReviewDTOs(reviews), nil
}

func (s *reviewService) Create(ctx context.Context, userID int64, in ReviewInput) (ReviewDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rating, err := domain.NewRating(in.Rating)
	if err != nil {
		return ReviewDTO{}, err
	}
	review, err := domain.NewReview(userID, in.BookID, rating, in.Comment, s.clock())
	if err != nil {
		return ReviewDTO{}, err
	}

	var created *domain.Review
	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := tx.Books.GetByID(ctx, in.BookID); err != nil {
			if errors.Is(err, store.ErrBookNotFound) {
				return ErrUnknownBook
			}
			return err
		}

		_, err := tx.Reviews.GetByUserAndBook(ctx, userID, in.BookID)
		switch {
		case err == nil:
			return ErrDuplicateReview
		case !errors.Is(err, store.ErrReviewNotFound):
			return err
		}

		if err := tx.Reviews.Create(ctx, review); err != nil {
			if errors.Is(err, store.ErrReviewExists) {
				return ErrDuplicateReview
			}
			return err
		}

		// Reload to pick up username and book title.
		created, err = tx.Reviews.GetByID(ctx, review.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrUnknownBook) || errors.Is(err, ErrDuplicateReview) {
			log.Debug("review rejected",
				slog.Int64("user_id", userID),
				slog.Int64("book_id", in.BookID),
				slog.String("reason", err.Error()))
			return ReviewDTO{}, err
		}
		return ReviewDTO{}, fmt.Errorf("failed to create review: %w", err)
	}

	log.Info("review created",
		slog.Int64("review_id", created.ID),
		slog.Int64("book_id", created.BookID))
	return toReviewDTO(created), nil
}

// owned loads a review and checks that userID wrote it.
func owned(ctx context.Context, reviews store.ReviewStore, userID, reviewID int64) (*domain.Review, error) {
	review, err := reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.IsOwnedBy(userID) {
		return nil, ErrNotOwner
	}
	return review, nil
}

func (s *reviewService) Update(ctx context.Context, userID, reviewID int64, in ReviewInput) (ReviewDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rating, err := domain.NewRating(in.Rating)
	if err != nil {
		return ReviewDTO{}, err
	}

	var review *domain.Review
	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		review, err = owned(ctx, tx.Reviews, userID, reviewID)
		if err != nil {
			return err
		}
		if err := review.Edit(rating, in.Comment, s.clock()); err != nil {
			return err
		}
		return tx.Reviews.Update(ctx, review)
	})
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			log.Warn("review update by non-owner",
				slog.Int64("user_id", userID),
				slog.Int64("review_id", reviewID))
			return ReviewDTO{}, err
		}
		if errors.Is(err, domain.ErrValidation) || store.IsNotFoundError(err) {
			return ReviewDTO{}, err
		}
		return ReviewDTO{}, fmt.Errorf("failed to update review: %w", err)
	}

	log.Info("review updated", slog.Int64("review_id", reviewID))
	return toReviewDTO(review), nil
}

func (s *reviewService) Delete(ctx context.Context, userID, reviewID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := owned(ctx, tx.Reviews, userID, reviewID); err != nil {
			return err
		}
		return tx.Reviews.Delete(ctx, reviewID)
	})
	if err != nil {
		if errors.Is(err, ErrNotOwner) {
			log.Warn("review delete by non-owner",
				slog.Int64("user_id", userID),
				slog.Int64("review_id", reviewID))
			return err
		}
		if store.IsNotFoundError(err) {
			return err
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	log.Info("review deleted", slog.Int64("review_id", reviewID))
	return nil
}
