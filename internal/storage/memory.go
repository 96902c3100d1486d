package storage

import (
	"sync"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// MemoryStorage is a Backend that lives only as long as the process, used
// for --ephemeral sessions.
type MemoryStorage struct {
	mu      sync.Mutex
	origins map[string]*lastvisit.MemoryStore
}

var _ Backend = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{origins: make(map[string]*lastvisit.MemoryStore)}
}

// Origin returns the store for one origin, creating it on first use.
func (ms *MemoryStorage) Origin(origin string) lastvisit.Store {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.origins[origin]
	if !ok {
		s = lastvisit.NewMemoryStore(nil)
		ms.origins[origin] = s
	}
	return s
}

// Close is a no-op.
func (ms *MemoryStorage) Close() error { return nil }
