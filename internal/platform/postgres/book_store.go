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

const bookSelect = `
	SELECT b.id, b.title, b.author, b.summary, b.isbn, b.language, b.published_year,
		b.publisher, b.pages, b.cover_image_path, b.category_id, c.name
	FROM books b
	JOIN categories c ON c.id = b.category_id
`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresBookStore implements store.BookStore.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a PostgresBookStore. A nil logger falls back to slog.Default().
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

var _ store.BookStore = (*PostgresBookStore)(nil)

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{db: tx, logger: s.logger}
}

// Create implements store.BookStore.Create
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO books (title, author, summary, isbn, language, published_year,
			publisher, pages, cover_image_path, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		book.Title,
		book.Author,
		book.Summary,
		book.ISBN,
		book.Language,
		book.PublishedYear,
		book.Publisher,
		book.Pages,
		book.CoverImagePath,
		book.CategoryID,
	).Scan(&book.ID)
	if err != nil {
		if IsForeignKeyViolation(err) || IsCheckConstraintViolation(err) {
			log.Warn("book rejected by database constraint",
				slog.String("constraint", constraintName(err)),
				slog.Int64("category_id", book.CategoryID))
			return MapError(err)
		}
		log.Error("failed to create book", slog.String("error", err.Error()))
		return err
	}

	log.Info("book created",
		slog.Int64("book_id", book.ID),
		slog.Int64("category_id", book.CategoryID))
	return nil
}

// GetByID implements store.BookStore.GetByID
func (s *PostgresBookStore) GetByID(ctx context.Context, id int64) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := scanBook(s.db.QueryRowContext(ctx, bookSelect+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.Int64("book_id", id))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return nil, err
	}
	return book, nil
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(ctx context.Context, filter store.BookFilter) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		conditions []string
		args       []any
	)
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, likeEscaper.Replace(term))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(b.title ILIKE '%%' || $%d || '%%' OR b.author ILIKE '%%' || $%d || '%%')", n, n))
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("b.category_id = $%d", len(args)))
	}

	query := bookSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.title, b.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list books", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	books := []*domain.Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("listed books",
		slog.String("search", filter.Search),
		slog.Int64("category_id", filter.CategoryID),
		slog.Int("count", len(books)))
	return books, nil
}

// Update implements store.BookStore.Update
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("book_id", book.ID))
		return err
	}

	query := `
		UPDATE books
		SET title = $1, author = $2, summary = $3, isbn = $4, language = $5,
			published_year = $6, publisher = $7, pages = $8, cover_image_path = $9,
			category_id = $10
		WHERE id = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		book.Title,
		book.Author,
		book.Summary,
		book.ISBN,
		book.Language,
		book.PublishedYear,
		book.Publisher,
		book.Pages,
		book.CoverImagePath,
		book.CategoryID,
		book.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) || IsCheckConstraintViolation(err) {
			return MapError(err)
		}
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", book.ID))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book updated", slog.Int64("book_id", book.ID))
	return nil
}

// Delete implements store.BookStore.Delete
func (s *PostgresBookStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var b domain.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Summary,
		&b.ISBN,
		&b.Language,
		&b.PublishedYear,
		&b.Publisher,
		&b.Pages,
		&b.CoverImagePath,
		&b.CategoryID,
		&b.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
