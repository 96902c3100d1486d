package lastvisit

import "sync"

// MemoryStore is an in-memory Store. The zero value is ready to use.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates a MemoryStore seeded with items.
func NewMemoryStore(items map[string]string) *MemoryStore {
	ms := &MemoryStore{items: make(map[string]string, len(items))}
	for k, v := range items {
		ms.items[k] = v
	}
	return ms
}

// GetItem implements Store.
func (ms *MemoryStore) GetItem(key string) (string, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	v, ok := ms.items[key]
	return v, ok, nil
}

// SetItem implements Store.
func (ms *MemoryStore) SetItem(key, value string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.items == nil {
		ms.items = make(map[string]string)
	}
	ms.items[key] = value
	return nil
}

// RemoveItem implements Store. Removing a missing key is not an error.
func (ms *MemoryStore) RemoveItem(key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
	return nil
}

// Len returns the number of stored items.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.items)
}
