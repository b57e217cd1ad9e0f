package mocks

import (
	"context"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService for testing
type MockJWTService struct {
	// GenerateTokenFn allows test cases to mock the GenerateToken behavior
	GenerateTokenFn func(ctx context.Context, user *domain.User) (string, error)

	// ValidateTokenFn allows test cases to mock the ValidateToken behavior
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	GenerateResetTokenFn func(ctx context.Context, user *domain.User) (*auth.ResetToken, error)
	ValidateResetTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Token       string
	ResetToken  *auth.ResetToken
	Err         error
	ValidateErr error
	Claims      *auth.Claims
	Lifetime    time.Duration
	ResetTTL    time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

// GenerateToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateToken(ctx context.Context, user *domain.User) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, user)
	}
	return m.Token, m.Err
}

// ValidateToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// GenerateResetToken implements the auth.JWTService interface
func (m *MockJWTService) GenerateResetToken(ctx context.Context, user *domain.User) (*auth.ResetToken, error) {
	if m.GenerateResetTokenFn != nil {
		return m.GenerateResetTokenFn(ctx, user)
	}
	return m.ResetToken, m.Err
}

// ValidateResetToken implements the auth.JWTService interface
func (m *MockJWTService) ValidateResetToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateResetTokenFn != nil {
		return m.ValidateResetTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

// TokenLifetime returns Lifetime, or one hour when unset.
func (m *MockJWTService) TokenLifetime() time.Duration {
	if m.Lifetime == 0 {
		return time.Hour
	}
	return m.Lifetime
}

// ResetTokenLifetime returns ResetTTL, or fifteen minutes when unset.
func (m *MockJWTService) ResetTokenLifetime() time.Duration {
	if m.ResetTTL == 0 {
		return 15 * time.Minute
	}
	return m.ResetTTL
}
