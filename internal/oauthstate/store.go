// Package oauthstate keeps anti-forgery state values between the authorize
// redirect and the token exchange. Every state can be written once and read
// once.
package oauthstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vipul43/blogforge/internal/models"
)

var (
	// ErrNotFound is returned for unknown, expired or already consumed states.
	ErrNotFound = errors.New("oauth state not found")
	// ErrExists is returned when a state value is saved twice.
	ErrExists = errors.New("oauth state already exists")
)

// Entry is what gets remembered for one authorization flow.
type Entry struct {
	State     string          `json:"state"`
	Provider  models.Provider `json:"provider"`
	Verifier  string          `json:"verifier,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Store interface {
	Save(ctx context.Context, entry Entry, ttl time.Duration) error
	Consume(ctx context.Context, state string) (*Entry, error)
}

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, entry Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	if _, ok := s.items[entry.State]; ok {
		return ErrExists
	}
	s.items[entry.State] = memoryItem{entry: entry, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Consume(_ context.Context, state string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[state]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.items, state)

	if !s.now().Before(item.expiresAt) {
		return nil, ErrNotFound
	}
	entry := item.entry
	return &entry, nil
}

// evictExpired must be called with mu held.
func (s *MemoryStore) evictExpired(now time.Time) {
	for state, item := range s.items {
		if !now.Before(item.expiresAt) {
			delete(s.items, state)
		}
	}
}
