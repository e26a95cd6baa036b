package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.DocumentCopier = (*Copier)(nil)
	var _ driven.ScratchProvider = (*Scratch)(nil)
}

func TestCopier_Copy(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 content"), 0644))

	t.Run("copies content", func(t *testing.T) {
		dst := filepath.Join(dir, "copy.pdf")
		require.NoError(t, NewCopier().Copy(ctx, src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 content", string(data))
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		dst := filepath.Join(dir, "existing.pdf")
		require.NoError(t, os.WriteFile(dst, []byte("keep"), 0644))

		assert.Error(t, NewCopier().Copy(ctx, src, dst))

		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "keep", string(data))
	})

	t.Run("missing source", func(t *testing.T) {
		dst := filepath.Join(dir, "never.pdf")
		assert.Error(t, NewCopier().Copy(ctx, filepath.Join(dir, "missing.pdf"), dst))
		assert.NoFileExists(t, dst)
	})

	t.Run("directory source", func(t *testing.T) {
		dst := filepath.Join(dir, "dir.pdf")
		assert.Error(t, NewCopier().Copy(ctx, t.TempDir(), dst))
		assert.NoFileExists(t, dst)
	})

	t.Run("missing destination directory", func(t *testing.T) {
		assert.Error(t, NewCopier().Copy(ctx, src, filepath.Join(dir, "no", "such", "dir.pdf")))
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		dst := filepath.Join(dir, "cancelled.pdf")
		assert.ErrorIs(t, NewCopier().Copy(cctx, src, dst), context.Canceled)
		assert.NoFileExists(t, dst)
	})
}
