package store

import (
	"context"
	"sync"

	"github.com/finwheel/calc-engine/internal/model"
)

// MemoryStore implements Store with an in-memory slice. Used for testing
// and development. Not suitable for production (no persistence).
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*model.Calculation
	order []string // insertion order, oldest first
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]*model.Calculation),
	}
}

func (s *MemoryStore) SaveCalculation(_ context.Context, calc *model.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to avoid external mutation.
	copy := *calc
	s.byID[calc.ID] = &copy
	s.order = append(s.order, calc.ID)
	return nil
}

func (s *MemoryStore) GetCalculation(_ context.Context, id string) (*model.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *c
	return &copy, nil
}

func (s *MemoryStore) ListRecent(_ context.Context, limit int) ([]model.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}

	out := make([]model.Calculation, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *s.byID[s.order[i]])
	}
	return out, nil
}

func (s *MemoryStore) CountByKind(_ context.Context) (map[model.Kind]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.Kind]int)
	for _, c := range s.byID {
		counts[c.Kind]++
	}
	return counts, nil
}
