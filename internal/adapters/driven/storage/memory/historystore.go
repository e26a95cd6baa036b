package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.ScanRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]domain.ScanRecord),
	}
}

// Save stores or replaces a run record.
func (s *HistoryStore) Save(_ context.Context, record *domain.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(*record)
	return nil
}

// Get retrieves a run by ID.
func (s *HistoryStore) Get(_ context.Context, id string) (*domain.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	rec = cloneRecord(rec)
	return &rec, nil
}

// List returns runs, most recent first.
func (s *HistoryStore) List(_ context.Context, limit int) ([]domain.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sortedLocked()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune keeps the most recent 'keep' runs.
func (s *HistoryStore) Prune(_ context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := s.sortedLocked()
	if len(sorted) <= keep {
		return 0, nil
	}
	for _, rec := range sorted[keep:] {
		delete(s.records, rec.ID)
	}
	return len(sorted) - keep, nil
}

func (s *HistoryStore) sortedLocked() []domain.ScanRecord {
	out := make([]domain.ScanRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

func cloneRecord(r domain.ScanRecord) domain.ScanRecord {
	r.OutputPaths = append([]string(nil), r.OutputPaths...)
	r.Matches = append([]domain.PageMatch(nil), r.Matches...)
	return r
}
