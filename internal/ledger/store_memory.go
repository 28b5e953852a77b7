package ledger

import (
	"context"
	"sync"

	"recircle/pkg/domain"
)

// MemoryStore is the in-memory transaction log used by unit tests and dev
// mode.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       int64
	transactions []Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, t Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.transactions = append(s.transactions, t)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID domain.UserID) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *MemoryStore) SumByUser(_ context.Context, userID domain.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := 0
	for _, t := range s.transactions {
		if t.UserID == userID {
			sum += t.Delta
		}
	}
	return sum, nil
}
