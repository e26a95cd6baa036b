package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Scratch implements the interface.
var _ driven.ScratchProvider = (*Scratch)(nil)

// Scratch hands out run directories under a base directory.
type Scratch struct {
	base string
}

// NewScratch creates a provider rooted at base. An empty base selects
// DefaultScratchDir.
func NewScratch(base string) *Scratch {
	if base == "" {
		base = DefaultScratchDir()
	}
	return &Scratch{base: base}
}

// DefaultScratchDir returns <user cache dir>/pdfsift/scratch, or a
// directory under os.TempDir when there is no user cache directory.
func DefaultScratchDir() string {
	if cache, err := os.UserCacheDir(); err == nil && cache != "" {
		return filepath.Join(cache, "pdfsift", "scratch")
	}
	return filepath.Join(os.TempDir(), "pdfsift-scratch")
}

// Base returns the directory run directories are created in.
func (s *Scratch) Base() string {
	return s.base
}

// Create makes a fresh run directory. The cleanup removes it and is safe
// to call more than once.
func (s *Scratch) Create(runID string) (string, func() error, error) {
	if err := os.MkdirAll(s.base, 0700); err != nil {
		return "", nil, fmt.Errorf("create scratch base: %w", err)
	}

	dir, err := os.MkdirTemp(s.base, "run-"+sanitize(runID)+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch directory: %w", err)
	}

	var once sync.Once
	var cleanupErr error
	cleanup := func() error {
		once.Do(func() {
			cleanupErr = os.RemoveAll(dir)
			if cleanupErr != nil {
				logger.Warn("failed to remove scratch directory %s: %v", dir, cleanupErr)
			}
		})
		return cleanupErr
	}
	return dir, cleanup, nil
}

// sanitize keeps run IDs usable as a path element.
func sanitize(id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
	if len(id) > 36 {
		id = id[:36]
	}
	return id
}
