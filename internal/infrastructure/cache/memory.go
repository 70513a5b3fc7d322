package cache

import (
	"context"
	"sync"
	"time"

	"github.com/docuvault/docrisk/internal/domain/entity"
)

type memoryEntry struct {
	page      *entity.Page
	expiresAt time.Time
}

// Memory is the in-process Cache implementation.  Entries expire lazily: an
// expired entry is removed on the Get that observes it.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

var _ Cache = (*Memory)(nil)

// NewMemory returns an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (*entity.Page, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have
		// refreshed the entry.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.page, true
}

func (m *Memory) Put(_ context.Context, key string, page *entity.Page, ttl time.Duration) {
	if page == nil || ttl <= 0 {
		return
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{page: page, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}

// Len returns the number of entries currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
