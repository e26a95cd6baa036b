package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.ChangeWatcher = (*Watcher)(nil)
}

// waitFor reads changes until one matches path or the timeout expires.
func waitFor(t *testing.T, changes <-chan driven.FileChange, path string) driven.FileChange {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-changes:
			require.True(t, ok, "change channel closed while waiting for %s", path)
			if c.Path == path {
				return c
			}
		case <-timeout:
			t.Fatalf("timeout waiting for change to %s", path)
		}
	}
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports new PDFs", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(false).Watch(ctx, root)
		require.NoError(t, err)

		path := filepath.Join(root, "new.pdf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

		c := waitFor(t, changes, path)
		assert.Contains(t, []string{"create", "write"}, c.Op)
	})

	t.Run("watches directories created later", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(false).Watch(ctx, root)
		require.NoError(t, err)

		sub := filepath.Join(root, "sub")
		require.NoError(t, os.Mkdir(sub, 0755))
		c := waitFor(t, changes, sub)
		assert.Equal(t, "create", c.Op)

		// The subdirectory watch is added when its create event is handled.
		time.Sleep(100 * time.Millisecond)

		path := filepath.Join(sub, "inner.ZIP")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		waitFor(t, changes, path)
	})

	t.Run("watches existing subdirectories", func(t *testing.T) {
		root := t.TempDir()
		sub := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0755))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(false).Watch(ctx, root)
		require.NoError(t, err)

		path := filepath.Join(sub, "deep.pdf")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		waitFor(t, changes, path)
	})

	t.Run("ignores other files", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := New(false).Watch(ctx, root)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))
		marker := filepath.Join(root, "marker.pdf")
		require.NoError(t, os.WriteFile(marker, []byte("x"), 0644))

		// The first reported change is the PDF.
		select {
		case c := <-changes:
			assert.Equal(t, marker, c.Path)
		case <-time.After(3 * time.Second):
			t.Fatal("timeout waiting for change")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		root := t.TempDir()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := New(false).Watch(ctx, root)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(3 * time.Second):
			t.Fatal("channel not closed after cancel")
		}
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := New(false).Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})

	t.Run("file root", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.pdf")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := New(false).Watch(context.Background(), file)
		assert.Error(t, err)
	})
}

func TestHandleEvent(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("x"), 0644))
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	tests := []struct {
		name       string
		skipHidden bool
		event      fsnotify.Event
		wantOp     string
	}{
		{"create pdf", false, fsnotify.Event{Name: pdf, Op: fsnotify.Create}, "create"},
		{"write pdf", false, fsnotify.Event{Name: pdf, Op: fsnotify.Write}, "write"},
		{"write and chmod", false, fsnotify.Event{Name: pdf, Op: fsnotify.Write | fsnotify.Chmod}, "write"},
		{"remove zip", false, fsnotify.Event{Name: filepath.Join(dir, "gone.zip"), Op: fsnotify.Remove}, "remove"},
		{"rename pdf", false, fsnotify.Event{Name: filepath.Join(dir, "old.PDF"), Op: fsnotify.Rename}, "rename"},
		{"chmod only", false, fsnotify.Event{Name: pdf, Op: fsnotify.Chmod}, ""},
		{"text file", false, fsnotify.Event{Name: filepath.Join(dir, "a.txt"), Op: fsnotify.Create}, ""},
		{"new directory", false, fsnotify.Event{Name: sub, Op: fsnotify.Create}, "create"},
		{"removed directory is not a candidate", false, fsnotify.Event{Name: filepath.Join(dir, "gone"), Op: fsnotify.Remove}, ""},
		{"hidden pdf reported by default", false, fsnotify.Event{Name: filepath.Join(dir, ".h.pdf"), Op: fsnotify.Remove}, "remove"},
		{"hidden pdf skipped", true, fsnotify.Event{Name: filepath.Join(dir, ".h.pdf"), Op: fsnotify.Remove}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := New(tt.skipHidden).handleEvent(tt.event)
			if tt.wantOp == "" {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, tt.wantOp, change.Op)
			assert.Equal(t, tt.event.Name, change.Path)
		})
	}
}

func TestIsCandidate(t *testing.T) {
	assert.True(t, isCandidate("a.pdf"))
	assert.True(t, isCandidate("A.PDF"))
	assert.True(t, isCandidate("b.Zip"))
	assert.False(t, isCandidate("c.txt"))
	assert.False(t, isCandidate("pdf"))
}
