package tokens

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phrazzld/bookreviews-api/internal/store"
)

type memoryEntry struct {
	userID int64
	expiry time.Time
}

// MemoryResetTokenStore keeps reset token IDs in process memory.
// It is used when no Redis address is configured.
type MemoryResetTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryResetTokenStore constructs an empty in-memory store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ store.ResetTokenStore = (*MemoryResetTokenStore)(nil)

// Save implements store.ResetTokenStore.Save
func (s *MemoryResetTokenStore) Save(_ context.Context, tokenID string, userID int64, ttl time.Duration) error {
	if tokenID == "" {
		return fmt.Errorf("%w: empty reset token id", store.ErrInvalidEntity)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: reset token ttl must be positive", store.ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)
	s.entries[tokenID] = memoryEntry{userID: userID, expiry: now.Add(ttl)}
	return nil
}

// Consume implements store.ResetTokenStore.Consume
func (s *MemoryResetTokenStore) Consume(_ context.Context, tokenID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[tokenID]
	if !ok {
		return 0, store.ErrResetTokenNotFound
	}
	delete(s.entries, tokenID)
	if !s.now().Before(entry.expiry) {
		return 0, store.ErrResetTokenNotFound
	}
	return entry.userID, nil
}

func (s *MemoryResetTokenStore) pruneLocked(now time.Time) {
	for id, e := range s.entries {
		if !now.Before(e.expiry) {
			delete(s.entries, id)
		}
	}
}
