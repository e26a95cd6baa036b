// Package pdfcpu assembles the PagesOnly output PDF with pdfcpu.
//
// Each matched page is trimmed out of its source document into a one-page
// fragment under the run's work directory; the fragments are merged, in the
// order they were added, when the output is written.
package pdfcpu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Assembler implements the interface.
var _ driven.PageAssembler = (*Assembler)(nil)

var disableConfigDir sync.Once

// Assembler creates pdfcpu-backed page builders.
type Assembler struct{}

// New creates an assembler. pdfcpu's on-disk configuration directory is
// disabled; all settings are in-process.
func New() *Assembler {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Assembler{}
}

// NewBuilder starts an empty output document whose fragments live in a
// fresh directory below workDir.
func (a *Assembler) NewBuilder(workDir string) (driven.PageBuilder, error) {
	if workDir == "" {
		workDir = os.TempDir()
	}
	dir, err := os.MkdirTemp(workDir, "pages-*")
	if err != nil {
		return nil, fmt.Errorf("create fragment directory: %w", err)
	}
	return &Builder{dir: dir, conf: newConfiguration()}, nil
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Builder accumulates one-page fragments.
type Builder struct {
	mu        sync.Mutex
	dir       string
	conf      *model.Configuration
	fragments []string
	closed    bool
}

// AddPage trims the page at the zero-based pageIndex of src into a fragment.
func (b *Builder) AddPage(ctx context.Context, src string, pageIndex int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("builder closed")
	}

	data, err := b.trim(src, pageIndex)
	if err != nil {
		return err
	}

	fragment := filepath.Join(b.dir, fmt.Sprintf("page-%05d.pdf", len(b.fragments)+1))
	if err := os.WriteFile(fragment, data, 0600); err != nil {
		return fmt.Errorf("write fragment: %w", err)
	}
	b.fragments = append(b.fragments, fragment)
	return nil
}

func (b *Builder) trim(src string, pageIndex int) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("%w: pdfcpu: %v", domain.ErrDocumentParse, r)
		}
	}()

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	count, err := api.PageCount(f, b.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentParse, err)
	}
	if pageIndex < 0 || pageIndex >= count {
		return nil, fmt.Errorf("page %d out of range (0-%d)", pageIndex, count-1)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.Trim(f, &buf, []string{strconv.Itoa(pageIndex + 1)}, b.conf); err != nil {
		return nil, fmt.Errorf("trim page %d: %w", pageIndex, err)
	}
	return buf.Bytes(), nil
}

// PageCount returns the number of pages added.
func (b *Builder) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fragments)
}

// WriteFile merges the fragments into path. The file appears only once it
// is complete.
func (b *Builder) WriteFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("builder closed")
	}
	if len(b.fragments) == 0 {
		return errors.New("no pages to write")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".pdfsift-*.pdf.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := b.merge(tmp); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	committed = true

	logger.Debug("assembled %d page(s) into %s", len(b.fragments), path)
	return nil
}

func (b *Builder) merge(w io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu merge: %v", r)
		}
	}()

	if len(b.fragments) == 1 {
		f, err := os.Open(b.fragments[0])
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	}

	readers := make([]io.ReadSeeker, 0, len(b.fragments))
	for _, path := range b.fragments {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		readers = append(readers, f)
	}

	if err := api.MergeRaw(readers, w, false, b.conf); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

// Close removes the fragments. Safe to call more than once.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.fragments = nil
	return os.RemoveAll(b.dir)
}
