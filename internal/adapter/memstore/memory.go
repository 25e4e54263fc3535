package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"caselaw/internal/domain"
)

// MemoryStore is an in-process CaseStore used by tests and dry runs.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[uint32]domain.Case

	// FailPut, when set, is returned by PutBatch before anything is written.
	FailPut error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cases: make(map[uint32]domain.Case),
	}
}

func (s *MemoryStore) Get(_ context.Context, id uint32) (domain.Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[id]
	if !ok {
		return domain.Case{}, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	return c, nil
}

func (s *MemoryStore) Contains(_ context.Context, id uint32) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cases[id]
	return ok, nil
}

func (s *MemoryStore) PutBatch(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPut != nil {
		return s.FailPut
	}
	for _, rec := range records {
		if rec.ID == 0 {
			return domain.ErrInvalidID
		}
	}
	for _, rec := range records {
		s.cases[rec.ID] = rec.Case
	}
	return nil
}

func (s *MemoryStore) Scan(ctx context.Context, from uint32, fn func(domain.Record) error) error {
	s.mu.RLock()
	ids := make([]uint32, 0, len(s.cases))
	for id := range s.cases {
		if id >= from {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.RLock()
		c, ok := s.cases[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		if err := fn(domain.Record{ID: id, Case: c}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases), nil
}

// Delete removes id. Used to simulate records that vanish between search and
// assembly.
func (s *MemoryStore) Delete(id uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cases, id)
}

func (s *MemoryStore) Close() error {
	return nil
}
