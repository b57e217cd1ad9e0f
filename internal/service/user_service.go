package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// UserService provides profile operations for the signed-in user.
type UserService interface {
	// GetProfile returns the account of userID.
	GetProfile(ctx context.Context, userID int64) (UserDTO, error)

	// UpdateProfile changes username, email and profile picture.
	// Uniqueness is only re-checked for values that change.
	UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (UserDTO, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	uow    store.UnitOfWork
	images *images
	logger *slog.Logger
}

// NewUserService creates a new UserService. objects may be nil, in which
// case profile picture uploads are rejected.
func NewUserService(
	users store.UserStore,
	uow store.UnitOfWork,
	objects objectstore.ObjectStore,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "user_service"))

	return &UserServiceImpl{
		users:  users,
		uow:    uow,
		images: newImages(objects, logger),
		logger: logger,
	}
}

// GetProfile retrieves the profile of a user
func (s *UserServiceImpl) GetProfile(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				slog.String("error", err.Error()),
				slog.Int64("user_id", userID))
		}
		return UserDTO{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	return toUserDTO(user, s.images.url(ctx, user.ProfilePictureURL)), nil
}

// UpdateProfile updates the profile of a user inside a unit of work
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (UserDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		user       *domain.User
		oldPicture string
		picture    upload
	)
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		user, err = tx.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}
		oldPicture = user.ProfilePictureURL

		username := strings.TrimSpace(in.Username)
		email := strings.TrimSpace(in.Email)
		if !strings.EqualFold(username, user.Username) {
			if err := ensureUsernameFree(ctx, tx.Users, username, user.ID); err != nil {
				return err
			}
		}
		if !strings.EqualFold(email, user.Email) {
			if err := ensureEmailFree(ctx, tx.Users, email, user.ID); err != nil {
				return err
			}
		}

		picture, err = s.images.resolve(ctx, profilePrefix, "profile", in.ProfilePicture, oldPicture)
		if err != nil {
			return err
		}

		user.Username = username
		user.Email = email
		user.ProfilePictureURL = picture.Path
		return mapUserConflict(tx.Users.UpdateProfile(ctx, user))
	})
	if err != nil {
		s.images.discard(ctx, picture)
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			log.Debug("profile update rejected",
				slog.Int64("user_id", userID),
				slog.String("reason", err.Error()))
		}
		return UserDTO{}, err
	}

	s.images.replaced(ctx, oldPicture, user.ProfilePictureURL)

	log.Info("profile updated", slog.Int64("user_id", userID))
	return toUserDTO(user, s.images.url(ctx, user.ProfilePictureURL)), nil
}
