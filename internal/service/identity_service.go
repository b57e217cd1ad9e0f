package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// Password length limits. bcrypt ignores everything past 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// IdentityService registers accounts and manages credentials.
type IdentityService interface {
	// Register creates a new account. The role defaults to User; Admin is
	// only accepted when admin signup is enabled.
	Register(ctx context.Context, in RegisterInput) (UserDTO, error)

	// Authenticate checks credentials and issues an access token.
	// Returns ErrInvalidCredentials for an unknown email or wrong password.
	Authenticate(ctx context.Context, email, password string) (TokenDTO, error)

	// ChangePassword replaces the password after checking the current one.
	// Returns ErrIncorrectPassword on mismatch.
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error

	// ForgotPassword issues a single-use reset token when the email is
	// registered. Unknown emails yield an empty ResetIssue and no error.
	ForgotPassword(ctx context.Context, email string) (ResetIssue, error)

	// ResetPassword redeems a reset token. Returns ErrInvalidResetToken when
	// the token is invalid, expired, issued for another email or already used.
	ResetPassword(ctx context.Context, email, token, newPassword string) error

	// AssignRole changes the role of the account registered under email.
	AssignRole(ctx context.Context, email string, role domain.Role) (UserDTO, error)
}

// IdentityOptions tunes IdentityService behaviour.
type IdentityOptions struct {
	// AllowAdminSignup lets Register accept the Admin role.
	AllowAdminSignup bool

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

type identityService struct {
	users    store.UserStore
	uow      store.UnitOfWork
	hasher   auth.PasswordHasher
	tokens   auth.JWTService
	resets   store.ResetTokenStore
	notifier ResetNotifier
	opts     IdentityOptions
	logger   *slog.Logger
}

// NewIdentityService creates an IdentityService.
// It returns an error if any of the required dependencies are nil.
func NewIdentityService(
	users store.UserStore,
	uow store.UnitOfWork,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	resets store.ResetTokenStore,
	notifier ResetNotifier,
	opts IdentityOptions,
	logger *slog.Logger,
) (IdentityService, error) {
	deps := []struct {
		name    string
		missing bool
	}{
		{"users", users == nil},
		{"uow", uow == nil},
		{"hasher", hasher == nil},
		{"tokens", tokens == nil},
		{"resets", resets == nil},
		{"notifier", notifier == nil},
	}
	for _, d := range deps {
		if d.missing {
			return nil, domain.NewValidationError(d.name, "cannot be nil", domain.ErrValidation)
		}
	}

	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &identityService{
		users:    users,
		uow:      uow,
		hasher:   hasher,
		tokens:   tokens,
		resets:   resets,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With(slog.String("component", "identity_service")),
	}, nil
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return domain.NewValidationError(field, "must be at least 6 characters", domain.ErrValidation)
	}
	if len(password) > MaxPasswordLength {
		return domain.NewValidationError(field, "must be at most 72 bytes", domain.ErrValidation)
	}
	return nil
}

// Register implements IdentityService.Register
func (s *identityService) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return UserDTO{}, err
	}
	if role == domain.RoleAdmin && !s.opts.AllowAdminSignup {
		log.Warn("registration requested admin role")
		return UserDTO{}, ErrRoleNotAllowed
	}
	if err := validatePassword("password", in.Password); err != nil {
		return UserDTO{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return UserDTO{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := domain.NewUser(in.Username, in.Email, hash, role, s.opts.Clock())
	if err != nil {
		return UserDTO{}, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := ensureUsernameFree(ctx, tx.Users, user.Username, 0); err != nil {
			return err
		}
		if err := ensureEmailFree(ctx, tx.Users, user.Email, 0); err != nil {
			return err
		}
		return mapUserConflict(tx.Users.Create(ctx, user))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, ErrDuplicateEmail) {
			log.Debug("registration rejected", slog.String("reason", err.Error()))
			return UserDTO{}, err
		}
		log.Error("failed to register user", slog.String("error", err.Error()))
		return UserDTO{}, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role.String()))
	return toUserDTO(user, ""), nil
}

// ensureUsernameFree fails with ErrDuplicateUsername when another account
// than exceptID uses username.
func ensureUsernameFree(ctx context.Context, users store.UserStore, username string, exceptID int64) error {
	existing, err := users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check username: %w", err)
	case existing.ID != exceptID:
		return ErrDuplicateUsername
	}
	return nil
}

// ensureEmailFree fails with ErrDuplicateEmail when another account than
// exceptID uses email.
func ensureEmailFree(ctx context.Context, users store.UserStore, email string, exceptID int64) error {
	existing, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email: %w", err)
	case existing.ID != exceptID:
		return ErrDuplicateEmail
	}
	return nil
}

// mapUserConflict translates uniqueness errors raised by concurrent writers.
func mapUserConflict(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUsernameExists):
		return ErrDuplicateUsername
	case errors.Is(err, store.ErrEmailExists):
		return ErrDuplicateEmail
	}
	return err
}

// Authenticate implements IdentityService.Authenticate
func (s *identityService) Authenticate(ctx context.Context, email, password string) (TokenDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return TokenDTO{}, ErrInvalidCredentials
		}
		return TokenDTO{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
			return TokenDTO{}, ErrInvalidCredentials
		}
		return TokenDTO{}, fmt.Errorf("failed to compare password: %w", err)
	}

	token, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", user.ID))
		return TokenDTO{}, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user authenticated", slog.Int64("user_id", user.ID))
	return TokenDTO{
		Token:     token,
		ExpiresIn: int64(s.tokens.TokenLifetime().Seconds()),
	}, nil
}

// ChangePassword implements IdentityService.ChangePassword
func (s *identityService) ChangePassword(
	ctx context.Context,
	userID int64,
	currentPassword, newPassword string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				log.Debug("password change with wrong current password",
					slog.Int64("user_id", userID))
				return ErrIncorrectPassword
			}
			return fmt.Errorf("failed to compare password: %w", err)
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		if err := tx.Users.UpdatePassword(ctx, userID, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		log.Info("password changed", slog.Int64("user_id", userID))
		return nil
	})
}

// ForgotPassword implements IdentityService.ForgotPassword
func (s *identityService) ForgotPassword(ctx context.Context, email string) (ResetIssue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("password reset for unknown email")
			return ResetIssue{}, nil
		}
		return ResetIssue{}, fmt.Errorf("failed to load user: %w", err)
	}

	reset, err := s.tokens.GenerateResetToken(ctx, user)
	if err != nil {
		return ResetIssue{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.resets.Save(ctx, reset.ID, user.ID, s.tokens.ResetTokenLifetime()); err != nil {
		return ResetIssue{}, fmt.Errorf("failed to record reset token: %w", err)
	}
	if err := s.notifier.NotifyPasswordReset(ctx, user, reset.Token, reset.ExpiresAt); err != nil {
		return ResetIssue{}, fmt.Errorf("failed to deliver reset token: %w", err)
	}

	log.Info("password reset token issued", slog.Int64("user_id", user.ID))
	return ResetIssue{Token: reset.Token, ExpiresAt: reset.ExpiresAt}, nil
}

// ResetPassword implements IdentityService.ResetPassword
func (s *identityService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	claims, err := s.tokens.ValidateResetToken(ctx, token)
	if err != nil {
		log.Debug("reset token rejected", slog.String("reason", err.Error()))
		return ErrInvalidResetToken
	}
	if !strings.EqualFold(claims.Email, strings.TrimSpace(email)) {
		log.Warn("reset token presented for another email", slog.Int64("user_id", claims.UserID))
		return ErrInvalidResetToken
	}

	userID, err := s.resets.Consume(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			log.Debug("reset token already used or expired", slog.Int64("user_id", claims.UserID))
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to redeem reset token: %w", err)
	}
	if userID != claims.UserID {
		log.Warn("reset token record does not match its claims", slog.Int64("user_id", claims.UserID))
		return ErrInvalidResetToken
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		return tx.Users.UpdatePassword(ctx, userID, hash)
	})
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	log.Info("password reset", slog.Int64("user_id", userID))
	return nil
}

// AssignRole implements IdentityService.AssignRole
func (s *identityService) AssignRole(ctx context.Context, email string, role domain.Role) (UserDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !role.IsValid() {
		return UserDTO{}, domain.NewValidationError("role", "must be Admin or User", domain.ErrInvalidRole)
	}

	var user *domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		user, err = tx.Users.GetByEmail(ctx, strings.TrimSpace(email))
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}
		if err := tx.Users.UpdateRole(ctx, user.ID, role); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
		user.Role = role
		return nil
	})
	if err != nil {
		return UserDTO{}, err
	}

	log.Info("role assigned",
		slog.Int64("user_id", user.ID),
		slog.String("role", role.String()))
	return toUserDTO(user, ""), nil
}
