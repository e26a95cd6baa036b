package driving

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// ScanService runs scans. At most one run is in flight at a time.
type ScanService interface {
	// Scan runs a scan to completion on the calling goroutine.
	// Requests that fail validation return domain.ErrInvalidInput or
	// domain.ErrPermissionDenied before any work begins.
	// Cancelled and failed runs return a result alongside the error.
	Scan(ctx context.Context, req domain.ScanRequest, sink domain.EventSink) (*domain.ScanResult, error)

	// Start validates the request and runs it on a background worker.
	// Returns domain.ErrScanInProgress if a run is already active.
	Start(ctx context.Context, req domain.ScanRequest) (Run, error)

	// Cancel requests cooperative termination of the in-flight run.
	// The run stops before its next document. Safe to call at any time.
	Cancel()

	// State returns the current lifecycle state.
	State() domain.RunState
}

// Run is a scan executing in the background.
type Run interface {
	// ID returns the run ID.
	ID() string

	// Events streams progress, log and finished events. Progress and log
	// events may be dropped when the consumer falls behind; the final
	// progress event and the finished event are always delivered.
	// The channel is closed after the finished event.
	Events() <-chan domain.ScanEvent

	// Wait blocks until the run ends and returns its result.
	Wait() (*domain.ScanResult, error)

	// Cancel requests cooperative termination of this run.
	Cancel()
}
