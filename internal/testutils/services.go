package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/tokens"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/phrazzld/bookreviews-api/internal/store"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// RecordingNotifier captures reset tokens instead of delivering them.
type RecordingNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
	// Err, when set, is returned by NotifyPasswordReset.
	Err error
}

// NewRecordingNotifier creates an empty RecordingNotifier.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{tokens: map[string]string{}}
}

var _ service.ResetNotifier = (*RecordingNotifier)(nil)

// NotifyPasswordReset implements service.ResetNotifier.
func (n *RecordingNotifier) NotifyPasswordReset(_ context.Context, user *domain.User, token string, _ time.Time) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[user.Email] = token
	return nil
}

// TokenFor returns the last token sent to email.
func (n *RecordingNotifier) TokenFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

// Services wires every service to in-memory stores.
type Services struct {
	DB       *MemoryDB
	Objects  *MemoryObjectStore
	JWT      auth.JWTService
	Hasher   *auth.BcryptHasher
	Resets   *tokens.MemoryResetTokenStore
	Notifier *RecordingNotifier

	Identity   service.IdentityService
	Users      service.UserService
	Books      service.BookService
	Categories service.CategoryService
	Reviews    service.ReviewService
}

// ServicesOption adjusts NewServices.
type ServicesOption func(*service.IdentityOptions)

// WithAdminSignup allows Register to accept the Admin role.
func WithAdminSignup() ServicesOption {
	return func(o *service.IdentityOptions) { o.AllowAdminSignup = true }
}

// NewServices builds Services with the cheapest bcrypt cost and a real JWT
// service signed with TestJWTSecret.
func NewServices(t *testing.T, opts ...ServicesOption) *Services {
	t.Helper()

	s := &Services{
		DB:       NewMemoryDB(),
		Objects:  NewMemoryObjectStore(),
		JWT:      NewJWTService(t),
		Hasher:   auth.NewBcryptHasher(bcrypt.MinCost),
		Resets:   tokens.NewMemoryResetTokenStore(),
		Notifier: NewRecordingNotifier(),
	}
	stores := s.DB.Stores()
	uow := s.DB.UnitOfWork()

	var identityOpts service.IdentityOptions
	for _, opt := range opts {
		opt(&identityOpts)
	}

	identity, err := service.NewIdentityService(
		stores.Users, uow, s.Hasher, s.JWT, s.Resets, s.Notifier, identityOpts, nil,
	)
	require.NoError(t, err)
	s.Identity = identity

	s.Users = service.NewUserService(stores.Users, uow, s.Objects, nil)
	s.Books = service.NewBookService(stores.Books, stores.Reviews, uow, s.Objects, nil)
	s.Categories = service.NewCategoryService(stores.Categories, uow, nil)
	s.Reviews = service.NewReviewService(stores.Reviews, uow, nil, nil)
	return s
}

// Stores is shorthand for s.DB.Stores().
func (s *Services) Stores() store.Stores {
	return s.DB.Stores()
}
