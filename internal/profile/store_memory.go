package profile

import (
	"context"
	"sync"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
)

// MemoryStore is the in-memory profile store used by unit tests and dev mode.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[domain.UserID]Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[domain.UserID]Profile)}
}

func (s *MemoryStore) Create(_ context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[p.UserID]; exists {
		return sentinel.ErrConflict
	}
	s.profiles[p.UserID] = p
	return nil
}

func (s *MemoryStore) FindByUser(_ context.Context, userID domain.UserID) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) Increment(_ context.Context, userID domain.UserID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Points += delta
	s.profiles[userID] = p
	return nil
}

func (s *MemoryStore) DecrementIfAvailable(_ context.Context, userID domain.UserID, amount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if p.Points < amount {
		return sentinel.ErrInsufficientBalance
	}
	p.Points -= amount
	s.profiles[userID] = p
	return nil
}
