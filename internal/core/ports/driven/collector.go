package driven

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// Collector walks a root directory and produces candidate PDFs.
// PDFs found inside ZIP archives are extracted into CollectOptions.ScratchDir.
type Collector interface {
	// Collect returns candidates in a deterministic order.
	// Unreadable archives are reported through the sink and skipped;
	// only a failure to walk the root itself is returned as an error.
	Collect(ctx context.Context, root string, opts CollectOptions) ([]domain.CandidateFile, error)
}

// CollectOptions controls a single collection pass.
type CollectOptions struct {
	// ScratchDir receives files extracted from archives. Required when
	// the tree contains archives.
	ScratchDir string

	// Exclude lists directories that are never descended into.
	Exclude []string

	// SkipHidden skips files and directories whose name starts with a dot.
	SkipHidden bool

	// Sink receives log events for skipped files. May be nil.
	Sink domain.EventSink
}
