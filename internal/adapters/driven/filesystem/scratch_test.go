package filesystem

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratch_Create(t *testing.T) {
	base := filepath.Join(t.TempDir(), "scratch")
	s := NewScratch(base)
	assert.Equal(t, base, s.Base())

	dir, cleanup, err := s.Create("run-1")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.Equal(t, base, filepath.Dir(dir))
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "run-run-1-"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.pdf"), []byte("x"), 0644))

	other, otherCleanup, err := s.Create("run-1")
	require.NoError(t, err)
	defer otherCleanup()
	assert.NotEqual(t, dir, other)

	require.NoError(t, cleanup())
	assert.NoDirExists(t, dir)
	assert.NoError(t, cleanup())
	assert.DirExists(t, other)
}

func TestNewScratch_Default(t *testing.T) {
	s := NewScratch("")
	assert.Equal(t, DefaultScratchDir(), s.Base())
	assert.Contains(t, s.Base(), "pdfsift")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc-123", "abc-123"},
		{"a/b\\c", "a_b_c"},
		{"../x", "___x"},
		{strings.Repeat("a", 50), strings.Repeat("a", 36)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitize(tt.in))
		})
	}
}
