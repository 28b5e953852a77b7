package residue

import (
	"context"
	"sort"
	"sync"

	"recircle/pkg/domain"
	"recircle/pkg/platform/sentinel"
)

// MemoryStore is the in-memory residue store used by unit tests and dev mode.
type MemoryStore struct {
	mu       sync.RWMutex
	residues map[domain.ResidueID]Residue
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{residues: make(map[domain.ResidueID]Residue)}
}

func (s *MemoryStore) Create(_ context.Context, r Residue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.residues[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.residues[r.ID] = r
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id domain.ResidueID) (Residue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.residues[id]
	if !ok {
		return Residue{}, sentinel.ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id domain.ResidueID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.residues[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	r.Status = status
	s.residues[id] = r
	return nil
}

func (s *MemoryStore) ListByCitizen(_ context.Context, citizenID domain.UserID) ([]Residue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Residue
	for _, r := range s.residues {
		if r.CitizenID == citizenID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
