package ledongthuc

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/pdftest"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageTextExtractor = (*Extractor)(nil)
}

func TestBackend(t *testing.T) {
	assert.Equal(t, domain.ExtractorLedongthuc, New().Backend())
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("reads page text", func(t *testing.T) {
		path := pdftest.Write(t, filepath.Join(dir, "a.pdf"), "foo", "bar baz", "Quarterly REPORT")

		doc, err := New().Open(ctx, path)
		require.NoError(t, err)
		defer doc.Close()

		require.Equal(t, 3, doc.PageCount())

		want := []string{"foo", "bar baz", "Quarterly REPORT"}
		for i, w := range want {
			text, err := doc.PageText(i)
			require.NoError(t, err, "page %d", i)
			assert.Contains(t, text, w, "page %d", i)
		}
	})

	t.Run("empty page has no text", func(t *testing.T) {
		path := pdftest.Write(t, filepath.Join(dir, "empty.pdf"), "")

		doc, err := New().Open(ctx, path)
		require.NoError(t, err)
		defer doc.Close()

		require.Equal(t, 1, doc.PageCount())
		text, err := doc.PageText(0)
		require.NoError(t, err)
		assert.Empty(t, strings.TrimSpace(text))
	})

	t.Run("page index out of range", func(t *testing.T) {
		path := pdftest.Write(t, filepath.Join(dir, "one.pdf"), "x")

		doc, err := New().Open(ctx, path)
		require.NoError(t, err)
		defer doc.Close()

		_, err = doc.PageText(1)
		assert.ErrorIs(t, err, domain.ErrPageExtract)
		_, err = doc.PageText(-1)
		assert.ErrorIs(t, err, domain.ErrPageExtract)
	})

	t.Run("closed document", func(t *testing.T) {
		path := pdftest.Write(t, filepath.Join(dir, "closed.pdf"), "x")

		doc, err := New().Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, doc.Close())
		assert.NoError(t, doc.Close())

		_, err = doc.PageText(0)
		assert.ErrorIs(t, err, domain.ErrPageExtract)
	})

	t.Run("not a PDF", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pdf")
		pdftest.WriteRaw(t, path, []byte("this is not a pdf"))

		_, err := New().Open(ctx, path)
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := New().Open(ctx, filepath.Join(dir, "missing.pdf"))
		assert.ErrorIs(t, err, domain.ErrDocumentParse)
	})

	t.Run("cancelled context", func(t *testing.T) {
		path := pdftest.Write(t, filepath.Join(dir, "c.pdf"), "x")
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New().Open(cctx, path)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
