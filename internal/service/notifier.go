package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
)

// ResetNotifier delivers password reset tokens to their owners.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, user *domain.User, token string, expiresAt time.Time) error
}

// LogResetNotifier records reset requests in the log without the token.
// It stands in for a mail relay.
type LogResetNotifier struct {
	logger *slog.Logger
}

// NewLogResetNotifier creates a LogResetNotifier. A nil logger falls back to slog.Default().
func NewLogResetNotifier(logger *slog.Logger) *LogResetNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogResetNotifier{logger: logger.With(slog.String("component", "reset_notifier"))}
}

// NotifyPasswordReset implements ResetNotifier.
func (n *LogResetNotifier) NotifyPasswordReset(
	ctx context.Context,
	user *domain.User,
	_ string,
	expiresAt time.Time,
) error {
	logger.FromContextOrDefault(ctx, n.logger).Info("password reset requested",
		slog.Int64("user_id", user.ID),
		slog.Time("expires_at", expiresAt))
	return nil
}
