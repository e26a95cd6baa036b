package driven

import "context"

// PageAssembler creates builders for the PagesOnly output PDF.
type PageAssembler interface {
	// NewBuilder starts an empty output document. Intermediate files
	// may be written under workDir.
	NewBuilder(workDir string) (PageBuilder, error)
}

// PageBuilder accumulates pages copied from source documents.
// A failed AddPage leaves the builder usable.
type PageBuilder interface {
	// AddPage appends the page at the zero-based index of src.
	AddPage(ctx context.Context, src string, pageIndex int) error

	// PageCount returns the number of pages added so far.
	PageCount() int

	// WriteFile writes the assembled document to path.
	WriteFile(ctx context.Context, path string) error

	// Close discards intermediate state.
	Close() error
}
