package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/phrazzld/bookreviews-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	svc     *testutils.Services
	reviews service.ReviewService
	now     time.Time
	alice   *domain.User
	bob     *domain.User
	emma    *domain.Book
	odes    *domain.Book
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	f := &reviewFixture{svc: testutils.NewServices(t), now: testutils.FixedTime}
	stores := f.svc.Stores()
	f.reviews = service.NewReviewService(stores.Reviews, f.svc.DB.UnitOfWork(), func() time.Time { return f.now }, nil)

	category := testutils.SeedCategory(t, stores, "Classics")
	f.emma = testutils.SeedBook(t, stores, "Emma", "Jane Austen", category.ID)
	f.odes = testutils.SeedBook(t, stores, "Odes", "John Keats", category.ID)
	f.alice = testutils.SeedUser(t, stores, "alice", "alice@example.com", "secret1", domain.RoleUser)
	f.bob = testutils.SeedUser(t, stores, "bob", "bob@example.com", "secret1", domain.RoleUser)
	return f
}

func TestReviewServiceCreate(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	review, err := f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 4, Comment: " Witty "})
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "Witty", review.Comment)
	assert.Equal(t, "alice", review.Username)
	assert.Equal(t, "Emma", review.BookTitle)
	assert.True(t, review.CreatedAt.Equal(testutils.FixedTime))
	assert.Nil(t, review.UpdatedAt)

	_, err = f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 5, Comment: "Again"})
	assert.ErrorIs(t, err, service.ErrDuplicateReview)

	_, err = f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: 999, Rating: 5, Comment: "Nope"})
	assert.ErrorIs(t, err, service.ErrUnknownBook)

	_, err = f.reviews.Create(ctx, f.bob.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 0, Comment: "Zero"})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	_, err = f.reviews.Create(ctx, f.bob.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 3, Comment: "  "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReviewServiceListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	first, err := f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 4, Comment: "First"})
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)
	second, err := f.reviews.Create(ctx, f.bob.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 2, Comment: "Second"})
	require.NoError(t, err)
	f.now = f.now.Add(time.Hour)
	_, err = f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: f.odes.ID, Rating: 5, Comment: "Lovely"})
	require.NoError(t, err)

	byBook, err := f.reviews.ListByBook(ctx, f.emma.ID)
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, second.ID, byBook[0].ID)
	assert.Equal(t, first.ID, byBook[1].ID)

	byUser, err := f.reviews.ListByUser(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "Odes", byUser[0].BookTitle)

	none, err := f.reviews.ListByBook(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReviewServiceOwnership(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	review, err := f.reviews.Create(ctx, f.alice.ID, service.ReviewInput{BookID: f.emma.ID, Rating: 4, Comment: "Witty"})
	require.NoError(t, err)

	edit := service.ReviewInput{BookID: f.emma.ID, Rating: 1, Comment: "Changed my mind"}

	_, err = f.reviews.Update(ctx, f.bob.ID, review.ID, edit)
	assert.ErrorIs(t, err, service.ErrNotOwner)
	assert.ErrorIs(t, f.reviews.Delete(ctx, f.bob.ID, review.ID), service.ErrNotOwner)

	f.now = f.now.Add(24 * time.Hour)
	updated, err := f.reviews.Update(ctx, f.alice.ID, review.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Rating)
	assert.Equal(t, "Changed my mind", updated.Comment)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.Equal(f.now))
	assert.True(t, updated.CreatedAt.Equal(testutils.FixedTime))

	_, err = f.reviews.Update(ctx, f.alice.ID, review.ID, service.ReviewInput{Rating: 9, Comment: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidRating)

	require.NoError(t, f.reviews.Delete(ctx, f.alice.ID, review.ID))
	assert.ErrorIs(t, f.reviews.Delete(ctx, f.alice.ID, review.ID), store.ErrReviewNotFound)

	_, err = f.reviews.Update(ctx, f.alice.ID, review.ID, edit)
	assert.ErrorIs(t, err, store.ErrReviewNotFound)
}
