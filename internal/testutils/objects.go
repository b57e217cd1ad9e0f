package testutils

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
)

// MemoryObjectStore implements objectstore.ObjectStore in memory.
type MemoryObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	// BaseURL prefixes keys in URL results.
	BaseURL string
	// PutErr, when set, fails every Put.
	PutErr error
}

// NewMemoryObjectStore creates an empty MemoryObjectStore serving URLs under
// https://objects.test/.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: map[string][]byte{},
		BaseURL: "https://objects.test/",
	}
}

var _ objectstore.ObjectStore = (*MemoryObjectStore)(nil)

func (m *MemoryObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemoryObjectStore) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", objectstore.ErrInvalidKey
	}
	return m.BaseURL + key, nil
}

func (m *MemoryObjectStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys returns the stored keys in order.
func (m *MemoryObjectStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is stored.
func (m *MemoryObjectStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}
