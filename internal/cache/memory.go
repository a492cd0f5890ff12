// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"sync"

	"github.com/pdiddy/shoreline/pkg/types"
)

// MemoryStore is a process-local Store. It survives only as long as the
// process and is used for tests and one-shot runs.
type MemoryStore struct {
	mu         sync.RWMutex
	records    map[string]types.Record
	order      []string
	maxEntries int
	closed     bool
}

// NewMemoryStore returns an empty store bounded to maxEntries (non-positive
// means unbounded).
func NewMemoryStore(maxEntries int) *MemoryStore {
	return &MemoryStore{
		records:    make(map[string]types.Record),
		maxEntries: maxEntries,
	}
}

func (s *MemoryStore) Get(_ context.Context, pmid string) (types.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.Record{}, false, ErrClosed
	}
	r, ok := s.records[pmid]
	if !ok {
		return types.Record{}, false, nil
	}
	return cloneRecord(r), true, nil
}

func (s *MemoryStore) GetMany(_ context.Context, pmids []string) (map[string]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make(map[string]types.Record, len(pmids))
	for _, id := range pmids {
		if r, ok := s.records[id]; ok {
			out[id] = cloneRecord(r)
		}
	}
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, records ...types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, r := range records {
		if _, exists := s.records[r.PMID]; !exists {
			s.order = append(s.order, r.PMID)
		}
		s.records[r.PMID] = cloneRecord(r)
	}
	s.evictLocked()
	return nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.records), nil
}

func (s *MemoryStore) All(_ context.Context) ([]types.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]types.Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneRecord(s.records[id]))
	}
	return out, nil
}

func (s *MemoryStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	return s.evictLocked(), nil
}

// evictLocked drops the oldest entries beyond the bound.
func (s *MemoryStore) evictLocked() int {
	n := excess(len(s.order), s.maxEntries)
	for _, id := range s.order[:n] {
		delete(s.records, id)
	}
	s.order = s.order[n:]
	return n
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
