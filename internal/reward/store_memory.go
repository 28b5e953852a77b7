package reward

import (
	"context"
	"sort"
	"sync"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
)

// MemoryStore is the in-memory reward store used by unit tests and dev mode.
type MemoryStore struct {
	mu          sync.RWMutex
	rewards     map[domain.RewardID]Reward
	redemptions []Redemption
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rewards: make(map[domain.RewardID]Reward)}
}

func (s *MemoryStore) ListRewards(_ context.Context) ([]Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Reward, 0, len(s.rewards))
	for _, r := range s.rewards {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindReward(_ context.Context, id domain.RewardID) (Reward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rewards[id]
	if !ok {
		return Reward{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) UpsertReward(_ context.Context, r Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[r.ID] = r
	return nil
}

func (s *MemoryStore) CreateRedemption(_ context.Context, r Redemption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redemptions = append(s.redemptions, r)
	return nil
}

func (s *MemoryStore) ListRedemptionsByUser(_ context.Context, userID domain.UserID) ([]Redemption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Redemption
	for _, r := range s.redemptions {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}
