package driving

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// HistoryService exposes past runs.
type HistoryService interface {
	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.ScanRecord, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.ScanRecord, error)

	// Prune keeps the most recent 'keep' runs and returns how many were removed.
	Prune(ctx context.Context, keep int) (int, error)
}
