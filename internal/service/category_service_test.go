package service_test

import (
	"context"
	"testing"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/phrazzld/bookreviews-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)

	poetry, err := svc.Categories.Create(ctx, "  Poetry ")
	require.NoError(t, err)
	assert.Equal(t, "Poetry", poetry.Name)

	_, err = svc.Categories.Create(ctx, "poetry")
	assert.ErrorIs(t, err, service.ErrDuplicateCategory)

	_, err = svc.Categories.Create(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	drama, err := svc.Categories.Create(ctx, "Drama")
	require.NoError(t, err)

	list, err := svc.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Drama", list[0].Name)

	t.Run("rename", func(t *testing.T) {
		_, err := svc.Categories.Update(ctx, drama.ID, "POETRY")
		assert.ErrorIs(t, err, service.ErrDuplicateCategory)

		renamed, err := svc.Categories.Update(ctx, poetry.ID, "poetry")
		require.NoError(t, err, "changing only the case of its own name is allowed")
		assert.Equal(t, "poetry", renamed.Name)

		_, err = svc.Categories.Update(ctx, 999, "Ghost")
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})

	t.Run("delete refuses categories with books", func(t *testing.T) {
		book := testutils.SeedBook(t, svc.Stores(), "Hamlet", "Shakespeare", drama.ID)

		err := svc.Categories.Delete(ctx, drama.ID)
		assert.ErrorIs(t, err, service.ErrCategoryInUse)

		require.NoError(t, svc.Books.Delete(ctx, book.ID))
		require.NoError(t, svc.Categories.Delete(ctx, drama.ID))

		_, err = svc.Categories.Get(ctx, drama.ID)
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)

		err = svc.Categories.Delete(ctx, drama.ID)
		assert.ErrorIs(t, err, store.ErrCategoryNotFound)
	})
}
