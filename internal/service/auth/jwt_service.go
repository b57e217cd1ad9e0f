package auth

import (
	"context"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess = "access"
	TokenTypeReset  = "reset"
)

// JWTService defines operations for managing JWT tokens.
type JWTService interface {
	// GenerateToken creates a signed access token carrying the user's id,
	// username, email and role.
	GenerateToken(ctx context.Context, user *domain.User) (string, error)

	// ValidateToken validates an access token and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateResetToken creates a signed password reset token for the user.
	// The returned ID is the token's jti and must be recorded so that the
	// token can be redeemed once.
	GenerateResetToken(ctx context.Context, user *domain.User) (*ResetToken, error)

	// ValidateResetToken validates a reset token and extracts its claims.
	ValidateResetToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime is the lifetime of access tokens.
	TokenLifetime() time.Duration

	// ResetTokenLifetime is the lifetime of reset tokens.
	ResetTokenLifetime() time.Duration
}

// ResetToken is a freshly issued password reset token.
type ResetToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents the custom claims structure for the JWT tokens.
type Claims struct {
	// UserID is the identifier of the user the token was issued for.
	UserID   int64
	Username string
	Email    string
	Role     domain.Role

	// TokenType is TokenTypeAccess or TokenTypeReset.
	TokenType string

	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
