package driven

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// HistoryStore persists summaries of finished runs.
type HistoryStore interface {
	// Save stores a run record. Saving an existing ID replaces it.
	Save(ctx context.Context, record *domain.ScanRecord) error

	// Get retrieves a run by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.ScanRecord, error)

	// List returns runs ordered by start time descending (most recent first).
	// A limit of zero or less returns every run.
	List(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// Prune keeps the most recent 'keep' runs and returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
