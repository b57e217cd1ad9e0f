package mocks

import (
	"context"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockIdentityService is a testify mock of service.IdentityService.
type MockIdentityService struct {
	mock.Mock
}

var _ service.IdentityService = (*MockIdentityService)(nil)

func (m *MockIdentityService) Register(ctx context.Context, in service.RegisterInput) (service.UserDTO, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(service.UserDTO), args.Error(1)
}

func (m *MockIdentityService) Authenticate(ctx context.Context, email, password string) (service.TokenDTO, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(service.TokenDTO), args.Error(1)
}

func (m *MockIdentityService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	args := m.Called(ctx, userID, current, next)
	return args.Error(0)
}

func (m *MockIdentityService) ForgotPassword(ctx context.Context, email string) (service.ResetIssue, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(service.ResetIssue), args.Error(1)
}

func (m *MockIdentityService) ResetPassword(ctx context.Context, email, token, newPassword string) error {
	args := m.Called(ctx, email, token, newPassword)
	return args.Error(0)
}

func (m *MockIdentityService) AssignRole(ctx context.Context, email string, role domain.Role) (service.UserDTO, error) {
	args := m.Called(ctx, email, role)
	return args.Get(0).(service.UserDTO), args.Error(1)
}
