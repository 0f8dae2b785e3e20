package cache

import (
    "context"
    "sync"
    "time"
)

type memoryEntry struct {
    payload []byte
    expires time.Time
}

// MemoryStore is an in-process RevocationStore and UserCache. Used when no
// REDIS_URL is configured and throughout the tests.
type MemoryStore struct {
    mu      sync.RWMutex
    revoked map[string]time.Time
    users   map[string]memoryEntry
    userTTL time.Duration
}

func NewMemoryStore(userTTL time.Duration) *MemoryStore {
    return &MemoryStore{
        revoked: make(map[string]time.Time),
        users:   make(map[string]memoryEntry),
        userTTL: userTTL,
    }
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, until time.Time) error {
    if time.Until(until) <= 0 {
        return nil
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    if existing, ok := s.revoked[tokenID]; ok && existing.After(until) {
        return nil
    }
    s.revoked[tokenID] = until
    return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
    s.mu.RLock()
    until, ok := s.revoked[tokenID]
    s.mu.RUnlock()
    if !ok {
        return false, nil
    }
    if time.Now().After(until) {
        s.mu.Lock()
        delete(s.revoked, tokenID)
        s.mu.Unlock()
        return false, nil
    }
    return true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, payload []byte) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.users[key] = memoryEntry{payload: payload, expires: time.Now().Add(s.userTTL)}
    return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
    s.mu.RLock()
    entry, ok := s.users[key]
    s.mu.RUnlock()
    if !ok || time.Now().After(entry.expires) {
        return nil, ErrCacheMiss
    }
    return entry.payload, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.users, key)
    return nil
}
