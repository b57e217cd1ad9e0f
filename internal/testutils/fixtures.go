package testutils

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/config"
	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestJWTSecret is long enough for the HS256 key check and must never be
// used outside tests.
const TestJWTSecret = "test-jwt-secret-thatis32characterslong"

// FixedTime is a stable clock value for tests.
var FixedTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// Clock returns a clock frozen at t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// TestAuthConfig returns auth settings with the cheapest bcrypt cost.
func TestAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                 TestJWTSecret,
		TokenLifetimeMinutes:      60,
		ResetTokenLifetimeMinutes: 15,
		BCryptCost:                bcrypt.MinCost,
		LoginRatePerMinute:        1000,
	}
}

// PNGDataURL is a data URL whose payload sniffs as image/png.
func PNGDataURL() string {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// HashPassword bcrypt-hashes password at the minimum cost.
func HashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// SeedUser stores a user whose password is password.
func SeedUser(t *testing.T, s store.Stores, username, email, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, email, HashPassword(t, password), role, FixedTime)
	require.NoError(t, err)
	require.NoError(t, s.Users.Create(context.Background(), user))
	return user
}

// SeedCategory stores a category.
func SeedCategory(t *testing.T, s store.Stores, name string) *domain.Category {
	t.Helper()
	category, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, s.Categories.Create(context.Background(), category))
	return category
}

// SeedBook stores a book in category.
func SeedBook(t *testing.T, s store.Stores, title, author string, categoryID int64) *domain.Book {
	t.Helper()
	book, err := domain.NewBook(domain.BookDetails{
		Title:      title,
		Author:     author,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	require.NoError(t, s.Books.Create(context.Background(), book))
	return book
}

// SeedReview stores a review written at createdAt.
func SeedReview(
	t *testing.T,
	s store.Stores,
	userID, bookID int64,
	rating int,
	comment string,
	createdAt time.Time,
) *domain.Review {
	t.Helper()
	r, err := domain.NewRating(rating)
	require.NoError(t, err)
	review, err := domain.NewReview(userID, bookID, r, comment, createdAt)
	require.NoError(t, err)
	require.NoError(t, s.Reviews.Create(context.Background(), review))
	return review
}
