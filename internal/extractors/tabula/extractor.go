// Package tabula extracts page text with the tabula layout-aware PDF reader.
package tabula

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/reader"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageTextExtractor = (*Extractor)(nil)

// Extractor opens PDFs with tabula.
type Extractor struct{}

// New creates a tabula extractor.
func New() *Extractor {
	return &Extractor{}
}

// Backend returns the backend identifier.
func (e *Extractor) Backend() domain.ExtractorBackend {
	return domain.ExtractorTabula
}

// Open parses the document at path and reads its page tree.
func (e *Extractor) Open(ctx context.Context, path string) (driven.PDFDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentParse, err)
	}

	count, err := r.PageCount()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("%w: page tree: %v", domain.ErrDocumentParse, err)
	}

	return &document{path: path, reader: r, pages: count}, nil
}

type document struct {
	path   string
	mu     sync.Mutex
	reader *reader.Reader
	pages  int
}

func (d *document) PageCount() int {
	return d.pages
}

func (d *document) PageText(index int) (text string, err error) {
	if index < 0 || index >= d.pages {
		return "", fmt.Errorf("%w: page %d out of range (0-%d)", domain.ErrPageExtract, index, d.pages-1)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reader == nil {
		return "", fmt.Errorf("%w: document closed", domain.ErrPageExtract)
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: page %d: %v", domain.ErrPageExtract, index, r)
		}
	}()

	// FromReader leaves the reader open after Text.
	text, warnings, err := tabula.FromReader(d.reader).Pages(index + 1).Text()
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", domain.ErrPageExtract, index, err)
	}
	for _, w := range warnings {
		logger.Debug("tabula %s page %d: %s", d.path, index, w.Message)
	}
	return text, nil
}

func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reader == nil {
		return nil
	}
	err := d.reader.Close()
	d.reader = nil
	return err
}
