package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"afi/internal/dataset/models"
)

// InMemoryStore keeps records in process. Each call is atomic; consecutive
// calls are not, matching the PostgreSQL store.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Record
}

// NewInMemoryStore constructs an empty store, optionally seeded.
func NewInMemoryStore(seed ...models.Record) *InMemoryStore {
	s := &InMemoryStore{}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		s.records = append(s.records, r)
	}
	return s
}

// Query returns every record ordered by descending score. Equal scores keep
// insertion order.
func (s *InMemoryStore) Query(_ context.Context) ([]models.Record, error) {
	s.mu.RLock()
	out := slices.Clone(s.records)
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b models.Record) int {
		return cmp.Compare(b.AFICompositeScore, a.AFICompositeScore)
	})
	return out, nil
}

// Delete removes every record matched by filter.
func (s *InMemoryStore) Delete(_ context.Context, filter models.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = slices.DeleteFunc(s.records, filter.Matches)
	return nil
}

// Insert appends batch, assigning a fresh id to every record.
func (s *InMemoryStore) Insert(_ context.Context, batch []models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range batch {
		r.ID = uuid.NewString()
		s.records = append(s.records, r)
	}
	return nil
}

// Count returns the number of stored records.
func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
