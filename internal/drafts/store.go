// Package drafts keeps builder session snapshots so an evicted or restarted session can be
// picked up where the user left it.
package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/soaringjerry/Raay/internal/builder"
)

// DefaultTTL is how long an untouched draft survives.
const DefaultTTL = 24 * time.Hour

type Store interface {
	Get(ctx context.Context, sessionID string) (builder.Snapshot, bool, error)
	Set(ctx context.Context, sessionID string, snap builder.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	snap    builder.Snapshot
	expires time.Time
}

// MemoryStore is the Store used when no redis is configured. Drafts do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]memoryEntry{}}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (builder.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok {
		return builder.Snapshot{}, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, sessionID)
		return builder.Snapshot{}, false, nil
	}
	return e.snap, true, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID string, snap builder.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{snap: snap, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}
