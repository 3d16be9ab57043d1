package store

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/goanalyzer/internal/analyzer/entity"
	"github.com/shandysiswandi/goanalyzer/internal/pkg/pkgerror"
)

// InMemoryStore keeps loaded datasets for the lifetime of a browser session.
// Entries not accessed for longer than the TTL are removed by Sweep.
type InMemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	datasets map[string]*datasetRecord
}

type datasetRecord struct {
	mu         sync.RWMutex
	dataset    entity.Dataset
	lastAccess time.Time
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		ttl:      ttl,
		now:      time.Now,
		datasets: make(map[string]*datasetRecord),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, ds entity.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.datasets[ds.ID]; exists {
		return pkgerror.NewBusiness("dataset already exists", pkgerror.CodeConflict)
	}

	s.datasets[ds.ID] = &datasetRecord{
		dataset:    ds,
		lastAccess: s.now(),
	}

	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, id string) (entity.Dataset, error) {
	rec, err := s.get(id)
	if err != nil {
		return entity.Dataset{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.lastAccess = s.now()

	return rec.dataset, nil
}

func (s *InMemoryStore) Update(ctx context.Context, id string, fn func(ds *entity.Dataset) error) error {
	rec, err := s.get(id)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	ds := rec.dataset
	if err := fn(&ds); err != nil {
		return err
	}
	rec.dataset = ds
	rec.lastAccess = s.now()

	return nil
}

func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[id]; !ok {
		return pkgerror.ErrNotFound
	}
	delete(s.datasets, id)

	return nil
}

// Sweep removes datasets idle for longer than the TTL and returns how many
// were removed. A non-positive TTL disables eviction.
func (s *InMemoryStore) Sweep(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.datasets {
		rec.mu.RLock()
		idle := rec.lastAccess.Before(cutoff)
		rec.mu.RUnlock()

		if idle {
			delete(s.datasets, id)
			removed++
		}
	}

	return removed
}

// Clear drops every dataset and returns how many there were.
func (s *InMemoryStore) Clear(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.datasets)
	s.datasets = make(map[string]*datasetRecord)
	return n
}

func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.datasets)
}

func (s *InMemoryStore) get(id string) (*datasetRecord, error) {
	s.mu.RLock()
	rec, ok := s.datasets[id]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
