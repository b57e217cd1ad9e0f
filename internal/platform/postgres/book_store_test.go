package postgres_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/postgres"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookRowColumns = []string{
	"id", "title", "author", "summary", "isbn", "language", "published_year",
	"publisher", "pages", "cover_image_path", "category_id", "name",
}

func newTestBook(t *testing.T) *domain.Book {
	t.Helper()
	book, err := domain.NewBook(domain.BookDetails{
		Title:         "Dune",
		Author:        "Frank Herbert",
		PublishedYear: 1965,
		Pages:         412,
		CategoryID:    2,
	})
	require.NoError(t, err)
	return book
}

func TestPostgresBookStore_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)
		book := newTestBook(t)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO books")).
			WithArgs("Dune", "Frank Herbert", "", "", "", 1965, "", 412, "", int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

		require.NoError(t, bookStore.Create(context.Background(), book))
		assert.Equal(t, int64(11), book.ID)
	})

	t.Run("unknown category", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO books")).
			WillReturnError(newPgError("23503", "books_category_id_fkey"))

		err := bookStore.Create(context.Background(), newTestBook(t))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestPostgresBookStore_List(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)

		mock.ExpectQuery(`FROM books b JOIN categories c ON c.id = b.category_id ORDER BY b.title, b.id`).
			WillReturnRows(sqlmock.NewRows(bookRowColumns).
				AddRow(int64(1), "Dune", "Frank Herbert", "", "", "", 1965, "", 412, "", int64(2), "Science Fiction"))

		books, err := bookStore.List(context.Background(), store.BookFilter{})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Science Fiction", books[0].CategoryName)
	})

	t.Run("search and category", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta(
			`WHERE (b.title ILIKE '%' || $1 || '%' OR b.author ILIKE '%' || $1 || '%') AND b.category_id = $2`)).
			WithArgs(`100\%`, int64(3)).
			WillReturnRows(sqlmock.NewRows(bookRowColumns))

		books, err := bookStore.List(context.Background(), store.BookFilter{Search: " 100% ", CategoryID: 3})
		require.NoError(t, err)
		assert.NotNil(t, books)
		assert.Empty(t, books)
	})
}

func TestPostgresBookStore_GetUpdateDelete(t *testing.T) {
	t.Run("get missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = $1")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(bookRowColumns))

		_, err := bookStore.GetByID(context.Background(), 5)
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})

	t.Run("update missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)
		book := newTestBook(t)
		book.ID = 5

		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, bookStore.Update(context.Background(), book), store.ErrBookNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		db, mock := newMockDB(t)
		bookStore := postgres.NewPostgresBookStore(db, nil)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id = $1")).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, bookStore.Delete(context.Background(), 5))
	})
}
