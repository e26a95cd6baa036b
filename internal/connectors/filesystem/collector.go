package filesystem

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Collector implements the interface.
var _ driven.Collector = (*Collector)(nil)

const (
	pdfExt = ".pdf"
	zipExt = ".zip"
)

// Collector walks a local directory tree for PDFs, including PDFs packed in ZIP archives.
type Collector struct{}

// NewCollector creates a filesystem collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect walks root in lexical order. Loose PDFs are returned as they are;
// PDF entries of ZIP archives are extracted under opts.ScratchDir, one
// subdirectory per archive, and returned in entry name order at the position
// of their archive.
func (c *Collector) Collect(ctx context.Context, root string, opts driven.CollectOptions) ([]domain.CandidateFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: root directory does not exist: %s", domain.ErrInvalidInput, root)
		}
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root is not a directory: %s", domain.ErrInvalidInput, root)
	}

	excluded := make(map[string]bool, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if abs, err := filepath.Abs(dir); err == nil {
			excluded[filepath.Clean(abs)] = true
		}
	}
	if opts.ScratchDir != "" {
		if abs, err := filepath.Abs(opts.ScratchDir); err == nil {
			excluded[filepath.Clean(abs)] = true
		}
	}

	var candidates []domain.CandidateFile
	archives := 0

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == root {
				return err
			}
			// Unreadable subtree: report and keep walking.
			opts.Sink.Emit(domain.LogEvent(domain.LevelWarn, p, fmt.Sprintf("Skipping unreadable path: %v", err)))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p == root {
				return nil
			}
			if opts.SkipHidden && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			if abs, err := filepath.Abs(p); err == nil && excluded[filepath.Clean(abs)] {
				logger.Debug("skipping excluded directory %s", p)
				return filepath.SkipDir
			}
			return nil
		}

		if opts.SkipHidden && isHidden(d.Name()) {
			return nil
		}

		switch strings.ToLower(filepath.Ext(d.Name())) {
		case pdfExt:
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}
			candidates = append(candidates, domain.CandidateFile{Path: p})
		case zipExt:
			archives++
			var dest string
			if opts.ScratchDir != "" {
				dest = filepath.Join(opts.ScratchDir, fmt.Sprintf("%04d-%s", archives, archiveDirName(d.Name())))
			}
			extracted, err := extractArchive(ctx, p, dest, opts.Sink)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				opts.Sink.Emit(domain.LogEvent(domain.LevelWarn, p, fmt.Sprintf("Skipping archive: %v", err)))
				logger.Warn("archive %s: %v", p, err)
			}
			candidates = append(candidates, extracted...)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	logger.Debug("collected %d candidates under %s (%d archives)", len(candidates), root, archives)
	return candidates, nil
}

// extractArchive writes every PDF entry of the archive at src under dest.
// An archive that cannot be opened yields ErrArchiveRead; a single bad entry
// is reported through the sink and skipped.
func extractArchive(ctx context.Context, src, dest string, sink domain.EventSink) ([]domain.CandidateFile, error) {
	if dest == "" {
		return nil, fmt.Errorf("%w: no scratch directory for %s", domain.ErrArchiveRead, src)
	}

	zr, err := zip.OpenReader(src)
	if errors.Is(err, zip.ErrInsecurePath) && zr != nil {
		// Unsafe names are rejected per entry below.
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}
	defer zr.Close()

	entries := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.ToLower(path.Ext(f.Name)) != pdfExt {
			continue
		}
		entries = append(entries, f)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	var out []domain.CandidateFile
	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		target, err := entryTarget(dest, f.Name)
		if err != nil {
			sink.Emit(domain.LogEvent(domain.LevelWarn, src, fmt.Sprintf("Skipping entry %s: %v", f.Name, err)))
			continue
		}
		if err := extractEntry(f, target); err != nil {
			sink.Emit(domain.LogEvent(domain.LevelWarn, src, fmt.Sprintf("Skipping entry %s: %v", f.Name, err)))
			continue
		}

		sink.Emit(domain.LogEvent(domain.LevelInfo, src, fmt.Sprintf("Extracted %s", f.Name)))
		out = append(out, domain.CandidateFile{
			Path:        target,
			ArchivePath: src,
			EntryName:   f.Name,
		})
	}
	return out, nil
}

// entryTarget maps a zip entry name to a path under dest,
// rejecting names that would escape it.
func entryTarget(dest, name string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
	if strings.Contains(name, "..") {
		for _, part := range strings.Split(strings.ReplaceAll(name, `\`, "/"), "/") {
			if part == ".." {
				return "", fmt.Errorf("%w: entry escapes archive root", domain.ErrArchiveRead)
			}
		}
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: absolute entry path", domain.ErrArchiveRead)
	}

	target := filepath.Join(dest, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: entry escapes archive root", domain.ErrArchiveRead)
	}
	return target, nil
}

func extractEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("%w: %v", domain.ErrArchiveRead, err)
	}
	return nil
}

// archiveDirName turns an archive file name into a scratch subdirectory name.
func archiveDirName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		return "archive"
	}
	return base
}

// isHidden reports whether any element of p starts with a dot.
// "." and ".." are not hidden.
func isHidden(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
