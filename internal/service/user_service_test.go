package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/phrazzld/bookreviews-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceGetProfile(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	user := testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

	profile, err := svc.Users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader", profile.Username)
	assert.Equal(t, "User", profile.Role)
	assert.True(t, profile.RegisteredAt.Equal(testutils.FixedTime))
	assert.Empty(t, profile.ProfilePictureURL)

	_, err = svc.Users.GetProfile(ctx, 999)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	stores := svc.Stores()
	user := testutils.SeedUser(t, stores, "reader", "reader@example.com", "secret1", domain.RoleUser)
	testutils.SeedUser(t, stores, "rival", "rival@example.com", "secret1", domain.RoleUser)

	t.Run("conflicts", func(t *testing.T) {
		_, err := svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "Rival", Email: "reader@example.com",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateUsername)

		_, err = svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "reader", Email: "RIVAL@example.com",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("own values may change case", func(t *testing.T) {
		profile, err := svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "Reader", Email: "Reader@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "Reader", profile.Username)
	})

	t.Run("picture upload and replacement", func(t *testing.T) {
		profile, err := svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "reader", Email: "reader@example.com", ProfilePicture: testutils.PNGDataURL(),
		})
		require.NoError(t, err)
		require.Len(t, svc.Objects.Keys(), 1)
		first := svc.Objects.Keys()[0]
		assert.True(t, strings.HasPrefix(first, "profiles/"))
		assert.Equal(t, "https://objects.test/"+first, profile.ProfilePictureURL)

		// Sending the URL back keeps the picture.
		again, err := svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "reader", Email: "reader@example.com", ProfilePicture: profile.ProfilePictureURL,
		})
		require.NoError(t, err)
		assert.Equal(t, profile.ProfilePictureURL, again.ProfilePictureURL)
		assert.True(t, svc.Objects.Has(first))

		_, err = svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "reader", Email: "reader@example.com", ProfilePicture: "https://avatars.example.com/me.png",
		})
		require.NoError(t, err)
		assert.False(t, svc.Objects.Has(first))
		assert.Empty(t, svc.Objects.Keys())
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Users.UpdateProfile(ctx, user.ID, service.ProfileInput{
			Username: "reader", Email: "not-an-email",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
