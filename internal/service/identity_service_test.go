package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/mocks"
	"github.com/phrazzld/bookreviews-api/internal/platform/tokens"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/phrazzld/bookreviews-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewIdentityServiceRejectsMissingDependencies(t *testing.T) {
	svc := testutils.NewServices(t)
	stores := svc.Stores()

	_, err := service.NewIdentityService(
		nil, svc.DB.UnitOfWork(), svc.Hasher, svc.JWT, svc.Resets, svc.Notifier, service.IdentityOptions{}, nil,
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.NewIdentityService(
		stores.Users, svc.DB.UnitOfWork(), svc.Hasher, svc.JWT, svc.Resets, nil, service.IdentityOptions{}, nil,
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifier")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to the User role", func(t *testing.T) {
		svc := testutils.NewServices(t)

		user, err := svc.Identity.Register(ctx, service.RegisterInput{
			Username: "  reader ",
			Email:    "Reader@Example.com",
			Password: "secret1",
		})
		require.NoError(t, err)
		assert.Positive(t, user.ID)
		assert.Equal(t, "reader", user.Username)
		assert.Equal(t, "User", user.Role)

		stored, err := svc.Stores().Users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "secret1", stored.PasswordHash)
		assert.NoError(t, svc.Hasher.Compare(stored.PasswordHash, "secret1"))
	})

	t.Run("admin requires admin signup", func(t *testing.T) {
		in := service.RegisterInput{Username: "boss", Email: "boss@example.com", Password: "secret1", Role: "admin"}

		_, err := testutils.NewServices(t).Identity.Register(ctx, in)
		assert.ErrorIs(t, err, service.ErrRoleNotAllowed)

		user, err := testutils.NewServices(t, testutils.WithAdminSignup()).Identity.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Admin", user.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := testutils.NewServices(t).Identity.Register(ctx, service.RegisterInput{
			Username: "reader", Email: "reader@example.com", Password: "secret1", Role: "Owner",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("duplicates ignore case", func(t *testing.T) {
		svc := testutils.NewServices(t)
		testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

		_, err := svc.Identity.Register(ctx, service.RegisterInput{
			Username: "READER", Email: "other@example.com", Password: "secret1",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateUsername)

		_, err = svc.Identity.Register(ctx, service.RegisterInput{
			Username: "other", Email: "READER@example.com", Password: "secret1",
		})
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("password length", func(t *testing.T) {
		svc := testutils.NewServices(t)

		_, err := svc.Identity.Register(ctx, service.RegisterInput{
			Username: "reader", Email: "reader@example.com", Password: "12345",
		})
		assert.ErrorIs(t, err, domain.ErrValidation)

		long := make([]byte, service.MaxPasswordLength+1)
		for i := range long {
			long[i] = 'a'
		}
		_, err = svc.Identity.Register(ctx, service.RegisterInput{
			Username: "reader", Email: "reader@example.com", Password: string(long),
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("hash failure is wrapped", func(t *testing.T) {
		svc := testutils.NewServices(t)
		stores := svc.Stores()
		hasher := &mocks.MockPasswordHasher{HashErr: errors.New("entropy exhausted")}

		identity, err := service.NewIdentityService(
			stores.Users, svc.DB.UnitOfWork(), hasher, svc.JWT, svc.Resets, svc.Notifier,
			service.IdentityOptions{}, nil,
		)
		require.NoError(t, err)

		_, err = identity.Register(ctx, service.RegisterInput{
			Username: "reader", Email: "reader@example.com", Password: "secret1",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to hash password")
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	user := testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleAdmin)

	token, err := svc.Identity.Authenticate(ctx, " reader@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	claims, err := svc.JWT.ValidateToken(ctx, token.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "reader@example.com", claims.Email)

	_, err = svc.Identity.Authenticate(ctx, "reader@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Identity.Authenticate(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	user := testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

	err := svc.Identity.ChangePassword(ctx, user.ID, "wrong", "another1")
	assert.ErrorIs(t, err, service.ErrIncorrectPassword)

	err = svc.Identity.ChangePassword(ctx, user.ID, "secret1", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.Identity.ChangePassword(ctx, user.ID, "secret1", "another1"))

	_, err = svc.Identity.Authenticate(ctx, "reader@example.com", "secret1")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Identity.Authenticate(ctx, "reader@example.com", "another1")
	assert.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email yields no token", func(t *testing.T) {
		svc := testutils.NewServices(t)

		issue, err := svc.Identity.ForgotPassword(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, issue.Token)
	})

	t.Run("token is single use", func(t *testing.T) {
		svc := testutils.NewServices(t)
		testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

		issue, err := svc.Identity.ForgotPassword(ctx, "reader@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, issue.Token)
		assert.Equal(t, issue.Token, svc.Notifier.TokenFor("reader@example.com"))
		assert.True(t, issue.ExpiresAt.After(testutils.FixedTime))

		require.NoError(t, svc.Identity.ResetPassword(ctx, "reader@example.com", issue.Token, "brand-new"))

		err = svc.Identity.ResetPassword(ctx, "reader@example.com", issue.Token, "again-new")
		assert.ErrorIs(t, err, service.ErrInvalidResetToken)

		_, err = svc.Identity.Authenticate(ctx, "reader@example.com", "brand-new")
		assert.NoError(t, err)
	})

	t.Run("token bound to its email", func(t *testing.T) {
		svc := testutils.NewServices(t)
		testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)
		testutils.SeedUser(t, svc.Stores(), "other", "other@example.com", "secret1", domain.RoleUser)

		issue, err := svc.Identity.ForgotPassword(ctx, "reader@example.com")
		require.NoError(t, err)

		err = svc.Identity.ResetPassword(ctx, "other@example.com", issue.Token, "brand-new")
		assert.ErrorIs(t, err, service.ErrInvalidResetToken)

		// The failed attempt must not burn the token.
		assert.NoError(t, svc.Identity.ResetPassword(ctx, "reader@example.com", issue.Token, "brand-new"))
	})

	t.Run("access token is not a reset token", func(t *testing.T) {
		svc := testutils.NewServices(t)
		user := testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

		access := testutils.AccessToken(t, svc.JWT, user)
		err := svc.Identity.ResetPassword(ctx, "reader@example.com", access, "brand-new")
		assert.ErrorIs(t, err, service.ErrInvalidResetToken)
	})

	t.Run("notifier failure", func(t *testing.T) {
		svc := testutils.NewServices(t)
		testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)
		svc.Notifier.Err = errors.New("smtp: relay unavailable")

		_, err := svc.Identity.ForgotPassword(ctx, "reader@example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to deliver reset token")
	})

	t.Run("expired record is rejected", func(t *testing.T) {
		svc := testutils.NewServices(t)
		stores := svc.Stores()
		testutils.SeedUser(t, stores, "reader", "reader@example.com", "secret1", domain.RoleUser)

		resets := tokens.NewMemoryResetTokenStore()
		identity, err := service.NewIdentityService(
			stores.Users, svc.DB.UnitOfWork(), svc.Hasher, svc.JWT, resets, svc.Notifier,
			service.IdentityOptions{}, nil,
		)
		require.NoError(t, err)

		issue, err := identity.ForgotPassword(ctx, "reader@example.com")
		require.NoError(t, err)

		claims, err := svc.JWT.ValidateResetToken(ctx, issue.Token)
		require.NoError(t, err)
		_, err = resets.Consume(ctx, claims.ID)
		require.NoError(t, err)

		err = identity.ResetPassword(ctx, "reader@example.com", issue.Token, "brand-new")
		assert.ErrorIs(t, err, service.ErrInvalidResetToken)
	})
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	user := testutils.SeedUser(t, svc.Stores(), "reader", "reader@example.com", "secret1", domain.RoleUser)

	dto, err := svc.Identity.AssignRole(ctx, "reader@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Admin", dto.Role)

	stored, err := svc.Stores().Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)

	_, err = svc.Identity.AssignRole(ctx, "reader@example.com", domain.Role("Owner"))
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = svc.Identity.AssignRole(ctx, "nobody@example.com", domain.RoleUser)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestIdentityServiceStoreFailures(t *testing.T) {
	ctx := context.Background()
	svc := testutils.NewServices(t)
	dbErr := errors.New("connection reset by peer")

	users := &mocks.TestifyMockUserStore{}
	uow := &mocks.MockUnitOfWork{Stores: store.Stores{Users: users}}
	identity, err := service.NewIdentityService(
		users, uow, svc.Hasher, svc.JWT, svc.Resets, svc.Notifier, service.IdentityOptions{}, nil,
	)
	require.NoError(t, err)

	t.Run("lookup errors are not reported as bad credentials", func(t *testing.T) {
		users.On("GetByEmail", mock.Anything, "reader@example.com").Return(nil, dbErr).Once()

		_, err := identity.Authenticate(ctx, "reader@example.com", "secret1")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email is bad credentials", func(t *testing.T) {
		users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, store.ErrUserNotFound).Once()

		_, err := identity.Authenticate(ctx, "ghost@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("transaction failure aborts password change", func(t *testing.T) {
		uow.Err = store.ErrTransactionFailed
		defer func() { uow.Err = nil }()
		calls := uow.Calls

		err := identity.ChangePassword(ctx, 1, "secret1", "changed1")
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
		assert.Equal(t, calls+1, uow.Calls)
	})

	t.Run("update failure is wrapped", func(t *testing.T) {
		hash := testutils.HashPassword(t, "secret1")
		user := &domain.User{ID: 1, Username: "reader", Email: "reader@example.com", PasswordHash: hash, Role: domain.RoleUser}
		users.On("GetByID", mock.Anything, int64(1)).Return(user, nil).Once()
		users.On("UpdatePassword", mock.Anything, int64(1), mock.AnythingOfType("string")).Return(dbErr).Once()

		err := identity.ChangePassword(ctx, 1, "secret1", "changed1")
		require.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to update password")
	})

	users.AssertExpectations(t)
}
