package storage

import (
	"context"
	"slices"
	"sync"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	best        map[string]map[int]BestRecord
	history     map[string][]float64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.best = make(map[string]map[int]BestRecord)
	s.history = make(map[string][]float64)
	return nil
}

func (s *MemoryStore) SaveBest(_ context.Context, record BestRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	run, ok := s.best[record.RunID]
	if !ok {
		run = make(map[int]BestRecord)
		s.best[record.RunID] = run
	}
	run[record.Generation] = record
	return nil
}

func (s *MemoryStore) GetBest(_ context.Context, runID string, generation int) (BestRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return BestRecord{}, false, ErrNotInitialized
	}
	record, ok := s.best[runID][generation]
	return record, ok, nil
}

func (s *MemoryStore) ListBest(_ context.Context, runID string) ([]BestRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, ErrNotInitialized
	}
	records := make([]BestRecord, 0, len(s.best[runID]))
	for _, r := range s.best[runID] {
		records = append(records, r)
	}
	slices.SortFunc(records, func(a, b BestRecord) int { return a.Generation - b.Generation })
	return records, nil
}

func (s *MemoryStore) SaveHistory(_ context.Context, runID string, history []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrNotInitialized
	}
	s.history[runID] = slices.Clone(history)
	return nil
}

func (s *MemoryStore) GetHistory(_ context.Context, runID string) ([]float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, false, ErrNotInitialized
	}
	history, ok := s.history[runID]
	return slices.Clone(history), ok, nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = false
	return nil
}
