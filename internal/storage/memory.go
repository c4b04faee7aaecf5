package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonos/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	populations map[string]model.PopulationRecord
	reports     map[string]model.SplitReportRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.populations = make(map[string]model.PopulationRecord)
	s.reports = make(map[string]model.SplitReportRecord)
	return nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, population model.PopulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.populations[population.ID] = population
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, id string) (model.PopulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	population, ok := s.populations[id]
	return population, ok, nil
}

func (s *MemoryStore) ListPopulations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.populations))
	for id := range s.populations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) DeletePopulation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.populations, id)
	return nil
}

func (s *MemoryStore) SaveSplitReport(_ context.Context, report model.SplitReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[reportKey(report.PopulationID, report.SubPop)] = report
	return nil
}

func (s *MemoryStore) GetSplitReport(_ context.Context, populationID string, subPop int) (model.SplitReportRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[reportKey(populationID, subPop)]
	return report, ok, nil
}

func reportKey(populationID string, subPop int) string {
	return fmt.Sprintf("%s/%d", populationID, subPop)
}
