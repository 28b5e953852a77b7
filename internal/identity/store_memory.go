package identity

import (
	"context"
	"strings"
	"sync"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
)

// MemoryStore is the in-memory user store used by unit tests and dev mode.
type MemoryStore struct {
	mu    sync.Mutex
	users map[domain.UserID]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[domain.UserID]User)}
}

func (s *MemoryStore) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) FindByUsername(_ context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.UserID) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return u, nil
}
