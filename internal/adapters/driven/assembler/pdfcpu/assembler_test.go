package pdfcpu

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/extractors/tabula"
	"github.com/custodia-labs/pdfsift/internal/pdftest"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageAssembler = (*Assembler)(nil)
	var _ driven.PageBuilder = (*Builder)(nil)
}

func pageTexts(t *testing.T, path string) []string {
	t.Helper()
	doc, err := tabula.New().Open(context.Background(), path)
	require.NoError(t, err)
	defer doc.Close()

	texts := make([]string, doc.PageCount())
	for i := range texts {
		texts[i], err = doc.PageText(i)
		require.NoError(t, err)
	}
	return texts
}

func TestBuilder_WriteFile(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	work := t.TempDir()
	a := pdftest.Write(t, filepath.Join(src, "a.pdf"), "foo", "bar baz")
	c := pdftest.Write(t, filepath.Join(src, "c.pdf"), "BAZ qux", "other")

	t.Run("merges pages in the order added", func(t *testing.T) {
		b, err := New().NewBuilder(work)
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.AddPage(ctx, a, 1))
		require.NoError(t, b.AddPage(ctx, c, 0))
		assert.Equal(t, 2, b.PageCount())

		out := filepath.Join(t.TempDir(), "results.pdf")
		require.NoError(t, b.WriteFile(ctx, out))

		n, err := api.PageCountFile(out)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		texts := pageTexts(t, out)
		assert.Contains(t, texts[0], "bar baz")
		assert.Contains(t, texts[1], "BAZ qux")
	})

	t.Run("single page", func(t *testing.T) {
		b, err := New().NewBuilder(work)
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.AddPage(ctx, a, 0))

		out := filepath.Join(t.TempDir(), "one.pdf")
		require.NoError(t, b.WriteFile(ctx, out))

		n, err := api.PageCountFile(out)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("no pages", func(t *testing.T) {
		b, err := New().NewBuilder(work)
		require.NoError(t, err)
		defer b.Close()

		out := filepath.Join(t.TempDir(), "empty.pdf")
		assert.Error(t, b.WriteFile(ctx, out))
		assert.NoFileExists(t, out)
	})

	t.Run("unwritable target leaves nothing behind", func(t *testing.T) {
		b, err := New().NewBuilder(work)
		require.NoError(t, err)
		defer b.Close()
		require.NoError(t, b.AddPage(ctx, a, 0))

		out := filepath.Join(t.TempDir(), "missing", "out.pdf")
		assert.Error(t, b.WriteFile(ctx, out))
		assert.NoFileExists(t, out)
	})
}

func TestBuilder_AddPage(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	a := pdftest.Write(t, filepath.Join(src, "a.pdf"), "foo", "bar")

	b, err := New().NewBuilder(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	t.Run("page out of range", func(t *testing.T) {
		assert.Error(t, b.AddPage(ctx, a, 2))
		assert.Error(t, b.AddPage(ctx, a, -1))
		assert.Equal(t, 0, b.PageCount())
	})

	t.Run("not a PDF", func(t *testing.T) {
		bad := pdftest.WriteRaw(t, filepath.Join(src, "bad.pdf"), []byte("garbage"))
		assert.Error(t, b.AddPage(ctx, bad, 0))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, b.AddPage(ctx, filepath.Join(src, "missing.pdf"), 0))
	})

	t.Run("builder stays usable after a failure", func(t *testing.T) {
		require.NoError(t, b.AddPage(ctx, a, 1))
		assert.Equal(t, 1, b.PageCount())
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, b.AddPage(cctx, a, 0), context.Canceled)
	})
}

func TestBuilder_Close(t *testing.T) {
	work := t.TempDir()
	b, err := New().NewBuilder(work)
	require.NoError(t, err)

	a := pdftest.Write(t, filepath.Join(t.TempDir(), "a.pdf"), "foo")
	require.NoError(t, b.AddPage(context.Background(), a, 0))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Error(t, b.AddPage(context.Background(), a, 0))
}
