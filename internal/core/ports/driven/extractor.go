package driven

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// PageTextExtractor opens PDF documents for per-page text extraction.
// Each backend (tabula, ledongthuc) implements this interface.
type PageTextExtractor interface {
	// Backend returns the backend identifier.
	Backend() domain.ExtractorBackend

	// Open parses the document at path.
	// Encrypted, corrupt or unsupported files return an error.
	Open(ctx context.Context, path string) (PDFDocument, error)
}

// PDFDocument is an opened PDF.
type PDFDocument interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the plain text of the page at the zero-based index.
	PageText(index int) (string, error)

	// Close releases the underlying file.
	Close() error
}

// ExtractorRegistry resolves backends by name.
type ExtractorRegistry interface {
	// Get returns the extractor for a backend.
	// Returns domain.ErrUnsupportedType for unknown backends.
	Get(backend domain.ExtractorBackend) (PageTextExtractor, error)

	// Register adds an extractor, replacing any with the same backend.
	Register(extractor PageTextExtractor)

	// Backends lists registered backends.
	Backends() []domain.ExtractorBackend
}
