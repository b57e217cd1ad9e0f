package mocks

import (
	"context"

	"github.com/phrazzld/bookreviews-api/internal/store"
)

// MockUnitOfWork implements store.UnitOfWork by running fn directly against
// Stores, without a transaction.
type MockUnitOfWork struct {
	Stores store.Stores

	// Err, when set, is returned instead of running fn.
	Err error

	// Calls counts Do invocations.
	Calls int
}

var _ store.UnitOfWork = (*MockUnitOfWork)(nil)

// Do implements store.UnitOfWork.
func (m *MockUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s store.Stores) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, m.Stores)
}
