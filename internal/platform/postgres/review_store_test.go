package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/postgres"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewRowColumns = []string{
	"id", "rating", "comment", "created_at", "updated_at", "book_id", "user_id", "username", "title",
}

func TestPostgresReviewStore_Create(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("duplicate review", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		review, err := domain.NewReview(1, 7, 4, "Great", now)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
			WithArgs(4, "Great", now, int64(7), int64(1)).
			WillReturnError(newPgError("23505", "reviews_user_book_key"))

		assert.ErrorIs(t, reviewStore.Create(context.Background(), review), store.ErrReviewExists)
	})

	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		review, err := domain.NewReview(1, 7, 5, "Loved it", now)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		require.NoError(t, reviewStore.Create(context.Background(), review))
		assert.Equal(t, int64(3), review.ID)
	})
}

func TestPostgresReviewStore_Read(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	t.Run("list by book", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE r.book_id = $1 ORDER BY r.created_at DESC")).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns).
				AddRow(int64(2), 5, "Second", created, updated, int64(7), int64(2), "bob", "Dune").
				AddRow(int64(1), 3, "First", created, nil, int64(7), int64(1), "alice", "Dune"))

		reviews, err := reviewStore.ListByBook(context.Background(), 7)
		require.NoError(t, err)
		require.Len(t, reviews, 2)
		assert.Equal(t, "bob", reviews[0].Username)
		require.NotNil(t, reviews[0].UpdatedAt)
		assert.Equal(t, updated, *reviews[0].UpdatedAt)
		assert.Nil(t, reviews[1].UpdatedAt)
		assert.Equal(t, domain.Rating(3), reviews[1].Rating)
	})

	t.Run("get by user and book missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE r.user_id = $1 AND r.book_id = $2")).
			WithArgs(int64(1), int64(7)).
			WillReturnRows(sqlmock.NewRows(reviewRowColumns))

		_, err := reviewStore.GetByUserAndBook(context.Background(), 1, 7)
		assert.ErrorIs(t, err, store.ErrReviewNotFound)
	})

	t.Run("ratings for books", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id, rating FROM reviews WHERE book_id IN ($1, $2)")).
			WithArgs(int64(7), int64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"book_id", "rating"}).
				AddRow(int64(7), 4).
				AddRow(int64(7), 2))

		ratings, err := reviewStore.RatingsForBooks(context.Background(), []int64{7, 8})
		require.NoError(t, err)
		assert.Equal(t, []domain.Rating{4, 2}, ratings[7])
		_, ok := ratings[8]
		assert.False(t, ok)
	})

	t.Run("ratings for no books skips the query", func(t *testing.T) {
		db, _ := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		ratings, err := reviewStore.RatingsForBooks(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, ratings)
	})
}

func TestPostgresReviewStore_UpdateDelete(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("update", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		review, err := domain.NewReview(1, 7, 4, "Great", now)
		require.NoError(t, err)
		review.ID = 3
		require.NoError(t, review.Edit(2, "Meh", now.Add(time.Hour)))

		mock.ExpectExec(regexp.QuoteMeta("UPDATE reviews SET rating = $1, comment = $2, updated_at = $3 WHERE id = $4")).
			WithArgs(2, "Meh", sqlmock.AnyArg(), int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, reviewStore.Update(context.Background(), review))
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		reviewStore := postgres.NewPostgresReviewStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, reviewStore.Delete(context.Background(), 3), store.ErrReviewNotFound)
	})
}
