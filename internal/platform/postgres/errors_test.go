package postgres_test

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/bookreviews-api/internal/platform/postgres"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "duplicate key value violates unique constraint",
		Detail:         "Key (email)=(secret@example.com) already exists.",
		ConstraintName: constraint,
		TableName:      "users",
	}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"email unique", newPgError("23505", "users_email_lower_key"), store.ErrEmailExists},
		{"username unique", newPgError("23505", "users_username_lower_key"), store.ErrUsernameExists},
		{"category unique", newPgError("23505", "categories_name_lower_key"), store.ErrCategoryExists},
		{"review unique", newPgError("23505", "reviews_user_book_key"), store.ErrReviewExists},
		{"unknown unique", newPgError("23505", "other_key"), store.ErrDuplicate},
		{"foreign key", newPgError("23503", "books_category_id_fkey"), store.ErrInvalidEntity},
		{"check", newPgError("23514", "reviews_rating_check"), store.ErrInvalidEntity},
		{"not null", newPgError("23502", ""), store.ErrInvalidEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := postgres.MapError(tt.err)
			assert.ErrorIs(t, result, tt.want)

			var pgErr *pgconn.PgError
			assert.False(t, errors.As(result, &pgErr),
				"PostgreSQL error details should not be accessible in mapped error")
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("unmapped passes through", func(t *testing.T) {
		err := errors.New("connection reset")
		assert.Same(t, err, postgres.MapError(err))
	})
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505", "")))
	assert.True(t, postgres.IsForeignKeyViolation(newPgError("23503", "")))
	assert.True(t, postgres.IsCheckConstraintViolation(newPgError("23514", "")))
	assert.True(t, postgres.IsNotNullViolation(newPgError("23502", "")))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
	assert.True(t, postgres.IsNotFoundError(sql.ErrNoRows))
	assert.True(t, postgres.IsNotFoundError(store.ErrBookNotFound))
	assert.False(t, postgres.IsNotFoundError(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 1), store.ErrBookNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), store.ErrBookNotFound), store.ErrBookNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewResult(0, 0), nil), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))

	resultErr := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(sqlmock.NewErrorResult(resultErr), nil), resultErr)
}
