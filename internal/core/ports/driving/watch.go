package driving

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// WatchService rescans a directory whenever PDFs or archives below it change.
type WatchService interface {
	// Watch runs an initial scan and then one scan per burst of changes,
	// until ctx is cancelled. Every finished run is passed to onResult.
	Watch(ctx context.Context, req domain.ScanRequest, sink domain.EventSink, onResult func(*domain.ScanResult)) error
}
