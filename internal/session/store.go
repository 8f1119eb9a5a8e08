// Package session maps signed cookie tokens to server-side user sessions.
package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by a Store when the session id is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Store keeps session id -> user id entries with a time-to-live.
type Store interface {
	Save(ctx context.Context, id string, userID int, ttl time.Duration) error
	Load(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	userID    int
	expiresAt time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped lazily on Load
// and swept on Save.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, id string, userID int, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}

	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	s.entries[id] = memoryEntry{userID: userID, expiresAt: exp}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return 0, ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return 0, ErrNotFound
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
