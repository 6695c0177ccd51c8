package datacache

import (
	"context"
	"sync"
	"time"

	"github.com/vango-dev/outlet/pkg/loader"
)

// MemoryStore keeps encoded snapshots in process memory. It's the default
// store and suitable for a single server.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*storedEntry
	ttl     time.Duration
	closed  bool
	done    chan struct{}
}

type storedEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	ttl             time.Duration
	cleanupInterval time.Duration
}

// WithMemoryTTL sets how long an entry lives. Zero keeps entries forever.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		c.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired entries are dropped.
// Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	cfg := &memoryConfig{cleanupInterval: time.Minute}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &MemoryStore{
		entries: make(map[string]*storedEntry),
		ttl:     cfg.ttl,
		done:    make(chan struct{}),
	}
	go m.cleanupLoop(cfg.cleanupInterval)
	return m
}

// Save encodes and stores snap.
func (m *MemoryStore) Save(ctx context.Context, key string, snap *loader.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = time.Now().Add(m.ttl)
	}
	m.entries[key] = &storedEntry{data: data, expiresAt: expiresAt}
	return nil
}

// Load returns a freshly decoded copy of the stored snapshot.
func (m *MemoryStore) Load(ctx context.Context, key string) (*loader.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStoreClosed
	}

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		return nil, nil
	}
	return Decode(e.data)
}

// Delete removes key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStoreClosed
	}
	delete(m.entries, key)
	return nil
}

// Close stops the cleanup loop and drops every entry.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.entries = nil
	return nil
}

// Count returns the number of stored entries, expired ones included.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (e *storedEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (m *MemoryStore) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	now := time.Now()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
}
