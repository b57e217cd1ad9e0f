package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

const reviewSelect = `
	SELECT r.id, r.rating, r.comment, r.created_at, r.updated_at, r.book_id, r.user_id,
		u.username, b.title
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN books b ON b.id = r.book_id
`

// PostgresReviewStore implements store.ReviewStore.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a PostgresReviewStore. A nil logger falls back to slog.Default().
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{db: tx, logger: s.logger}
}

// Create implements store.ReviewStore.Create
func (s *PostgresReviewStore) Create(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO reviews (rating, comment, created_at, book_id, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		review.Rating.Int(),
		review.Comment,
		review.CreatedAt,
		review.BookID,
		review.UserID,
	).Scan(&review.ID)
	if err != nil {
		if IsUniqueViolation(err) || IsForeignKeyViolation(err) || IsCheckConstraintViolation(err) {
			log.Debug("review rejected by database constraint",
				slog.String("constraint", constraintName(err)),
				slog.Int64("book_id", review.BookID),
				slog.Int64("user_id", review.UserID))
			return MapError(err)
		}
		log.Error("failed to create review", slog.String("error", err.Error()))
		return err
	}

	log.Info("review created",
		slog.Int64("review_id", review.ID),
		slog.Int64("book_id", review.BookID),
		slog.Int64("user_id", review.UserID))
	return nil
}

// GetByID implements store.ReviewStore.GetByID
func (s *PostgresReviewStore) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	return s.getOne(ctx, reviewSelect+` WHERE r.id = $1`, id)
}

// GetByUserAndBook implements store.ReviewStore.GetByUserAndBook
func (s *PostgresReviewStore) GetByUserAndBook(ctx context.Context, userID, bookID int64) (*domain.Review, error) {
	return s.getOne(ctx, reviewSelect+` WHERE r.user_id = $1 AND r.book_id = $2`, userID, bookID)
}

func (s *PostgresReviewStore) getOne(ctx context.Context, query string, args ...any) (*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	review, err := scanReview(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReviewNotFound
		}
		log.Error("failed to query review", slog.String("error", err.Error()))
		return nil, err
	}
	return review, nil
}

// ListByBook implements store.ReviewStore.ListByBook
func (s *PostgresReviewStore) ListByBook(ctx context.Context, bookID int64) ([]*domain.Review, error) {
	return s.list(ctx, reviewSelect+` WHERE r.book_id = $1 ORDER BY r.created_at DESC, r.id DESC`, bookID)
}

// ListByUser implements store.ReviewStore.ListByUser
func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID int64) ([]*domain.Review, error) {
	return s.list(ctx, reviewSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC, r.id DESC`, userID)
}

func (s *PostgresReviewStore) list(ctx context.Context, query string, arg int64) ([]*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		log.Error("failed to list reviews", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			log.Error("failed to scan review row", slog.String("error", err.Error()))
			return nil, err
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// RatingsForBooks implements store.ReviewStore.RatingsForBooks
func (s *PostgresReviewStore) RatingsForBooks(ctx context.Context, bookIDs []int64) (map[int64][]domain.Rating, error) {
	ratings := make(map[int64][]domain.Rating)
	if len(bookIDs) == 0 {
		return ratings, nil
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	placeholders := make([]string, len(bookIDs))
	args := make([]any, len(bookIDs))
	for i, id := range bookIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT book_id, rating FROM reviews WHERE book_id IN (` +
		strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to load ratings", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for rows.Next() {
		var bookID int64
		var rating int
		if err := rows.Scan(&bookID, &rating); err != nil {
			return nil, err
		}
		ratings[bookID] = append(ratings[bookID], domain.Rating(rating))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

// Update implements store.ReviewStore.Update
func (s *PostgresReviewStore) Update(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4`,
		review.Rating.Int(),
		review.Comment,
		review.UpdatedAt,
		review.ID,
	)
	if err != nil {
		log.Error("failed to update review",
			slog.String("error", err.Error()),
			slog.Int64("review_id", review.ID))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrReviewNotFound); err != nil {
		return err
	}

	log.Info("review updated", slog.Int64("review_id", review.ID))
	return nil
}

// Delete implements store.ReviewStore.Delete
func (s *PostgresReviewStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete review",
			slog.String("error", err.Error()),
			slog.Int64("review_id", id))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrReviewNotFound); err != nil {
		return err
	}

	log.Info("review deleted", slog.Int64("review_id", id))
	return nil
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var r domain.Review
	var rating int
	var updatedAt sql.NullTime
	err := row.Scan(
		&r.ID,
		&rating,
		&r.Comment,
		&r.CreatedAt,
		&updatedAt,
		&r.BookID,
		&r.UserID,
		&r.Username,
		&r.BookTitle,
	)
	if err != nil {
		return nil, err
	}

	r.Rating = domain.Rating(rating)
	if updatedAt.Valid {
		t := updatedAt.Time
		r.UpdatedAt = &t
	}
	return &r, nil
}
