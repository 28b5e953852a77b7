package collection

import (
	"context"
	"sort"
	"sync"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
)

// MemoryStore is the in-memory collection store used by unit tests and dev
// mode. The guarded Update gives it the same lost-race semantics as the
// Postgres implementation. byResidue tracks the live (non-cancelled)
// collection per residue, mirroring the partial unique index.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[domain.CollectionID]Collection
	byResidue   map[domain.ResidueID]domain.CollectionID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[domain.CollectionID]Collection),
		byResidue:   make(map[domain.ResidueID]domain.CollectionID),
	}
}

func (s *MemoryStore) Create(_ context.Context, c Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byResidue[c.ResidueID]; exists {
		return sentinel.ErrConflict
	}
	if _, exists := s.collections[c.ID]; exists {
		return sentinel.ErrConflict
	}
	s.collections[c.ID] = c
	s.byResidue[c.ResidueID] = c.ID
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.CollectionID) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[id]
	if !ok {
		return Collection{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) FindByResidue(_ context.Context, residueID domain.ResidueID) (Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byResidue[residueID]
	if !ok {
		return Collection{}, sentinel.ErrNotFound
	}
	return s.collections[id], nil
}

func (s *MemoryStore) Update(_ context.Context, c Collection, from Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.collections[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Status != from {
		return sentinel.ErrConflict
	}
	s.collections[c.ID] = c
	if c.Status == StatusCancelled && s.byResidue[c.ResidueID] == c.ID {
		delete(s.byResidue, c.ResidueID)
	}
	return nil
}

func (s *MemoryStore) ListByStatus(_ context.Context, status Status) ([]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Collection
	for _, c := range s.collections {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (s *MemoryStore) ListByCollector(_ context.Context, collectorID domain.UserID) ([]Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Collection
	for _, c := range s.collections {
		if c.CollectorID != nil && *c.CollectorID == collectorID {
			out = append(out, c)
		}
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(cs []Collection) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].CreatedAt.Before(cs[j].CreatedAt) })
}
