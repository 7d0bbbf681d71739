package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Expired entries are dropped
// on read and by an opportunistic sweep during writes.
type MemoryStore struct {
	mu      sync.Mutex
	items   map[int64]memEntry
	ttl     time.Duration
	now     func() time.Time
	lastGC  time.Time
	gcEvery time.Duration
}

type memEntry struct {
	s       Session
	expires time.Time
}

// NewMemoryStore returns a store whose sessions live for ttl after the last
// write. ttl <= 0 selects DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		items:   make(map[int64]memEntry),
		ttl:     ttl,
		now:     time.Now,
		gcEvery: time.Minute,
	}
}

// Get returns the live session for userID or a fresh idle one.
func (m *MemoryStore) Get(_ context.Context, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[userID]
	if !ok {
		return New(), nil
	}
	if !m.now().Before(e.expires) {
		delete(m.items, userID)
		return New(), nil
	}
	s := e.s
	return &s, nil
}

// Put stores a copy of s and restarts its TTL.
func (m *MemoryStore) Put(_ context.Context, userID int64, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cp := *s
	cp.UpdatedAt = now
	m.items[userID] = memEntry{s: cp, expires: now.Add(m.ttl)}
	m.sweepLocked(now)
	return nil
}

// Delete removes userID's session.
func (m *MemoryStore) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.items, userID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(m.lastGC) < m.gcEvery {
		return
	}
	for k, e := range m.items {
		if !now.Before(e.expires) {
			delete(m.items, k)
		}
	}
	m.lastGC = now
}
