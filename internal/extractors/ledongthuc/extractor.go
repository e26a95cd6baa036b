// Package ledongthuc extracts page text with the ledongthuc/pdf reader.
//
// The reader panics on some malformed files; every call into it is
// guarded and a panic becomes a parse or page error.
package ledongthuc

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.PageTextExtractor = (*Extractor)(nil)

// Extractor opens PDFs with ledongthuc/pdf.
type Extractor struct{}

// New creates a ledongthuc extractor.
func New() *Extractor {
	return &Extractor{}
}

// Backend returns the backend identifier.
func (e *Extractor) Backend() domain.ExtractorBackend {
	return domain.ExtractorLedongthuc
}

// Open parses the document at path.
func (e *Extractor) Open(ctx context.Context, path string) (doc driven.PDFDocument, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var f *os.File
	defer func() {
		if r := recover(); r != nil {
			if f != nil {
				f.Close()
			}
			doc, err = nil, fmt.Errorf("%w: %v", domain.ErrDocumentParse, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentParse, err)
	}

	return &document{file: f, reader: r, pages: r.NumPage()}, nil
}

type document struct {
	mu     sync.Mutex
	file   *os.File
	reader *pdf.Reader
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

	page := d.reader.Page(index + 1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", domain.ErrPageExtract, index, err)
	}
	return text, nil
}

func (d *document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.reader = nil
	return err
}
