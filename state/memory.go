package state

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// DefaultMemoryEntries bounds a MemoryStore built with size <= 0.
const DefaultMemoryEntries = 4096

// MemoryStore keeps descriptors in process, evicting the least recently
// used entry once full.
type MemoryStore struct {
	cache *lru.Cache[string, []byte]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, errors.Wrap(err, "memory store")
	}
	return &MemoryStore{cache: c}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, blob []byte) error {
	m.cache.Add(key, append([]byte(nil), blob...))
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.cache.Remove(key)
	return nil
}

// Len is the number of stored entries.
func (m *MemoryStore) Len() int { return m.cache.Len() }
