package tokens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "bookreviews:reset"

// RedisResetTokenStore keeps outstanding reset token IDs in Redis.
// Consume uses GETDEL so a token can be redeemed once even across replicas.
type RedisResetTokenStore struct {
	client    *redis.Client
	keyPrefix string
	logger    *slog.Logger
}

// NewRedisResetTokenStore connects to the Redis server at addr.
func NewRedisResetTokenStore(addr, password string, db int, logger *slog.Logger) (*RedisResetTokenStore, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("reset token redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisResetTokenStoreWithClient(client, logger), nil
}

// NewRedisResetTokenStoreWithClient wraps an existing client.
func NewRedisResetTokenStoreWithClient(client *redis.Client, logger *slog.Logger) *RedisResetTokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisResetTokenStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		logger:    logger.With(slog.String("component", "reset_token_store")),
	}
}

var _ store.ResetTokenStore = (*RedisResetTokenStore)(nil)

func (s *RedisResetTokenStore) key(tokenID string) string {
	return s.keyPrefix + ":" + tokenID
}

// Ping checks connectivity to Redis.
func (s *RedisResetTokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisResetTokenStore) Close() error {
	return s.client.Close()
}

// Save implements store.ResetTokenStore.Save
func (s *RedisResetTokenStore) Save(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error {
	if tokenID == "" {
		return fmt.Errorf("%w: empty reset token id", store.ErrInvalidEntity)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: reset token ttl must be positive", store.ErrInvalidEntity)
	}

	if err := s.client.Set(ctx, s.key(tokenID), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to save reset token",
			slog.String("error", err.Error()),
			slog.Int64("user_id", userID))
		return fmt.Errorf("failed to save reset token: %w", err)
	}
	return nil
}

// Consume implements store.ResetTokenStore.Consume
func (s *RedisResetTokenStore) Consume(ctx context.Context, tokenID string) (int64, error) {
	raw, err := s.client.GetDel(ctx, s.key(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, store.ErrResetTokenNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to consume reset token",
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to consume reset token: %w", err)
	}

	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt reset token record: %w", err)
	}
	return userID, nil
}
