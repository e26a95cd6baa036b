package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

const resultsPrefix = "results_"

// writePages assembles every matched page, in scan order, into one PDF.
// Pages that cannot be copied are logged and omitted.
func (s *ScanService) writePages(
	ctx context.Context,
	p *plan,
	workDir, stamp string,
	result *domain.ScanResult,
	sink domain.EventSink,
) error {
	builder, err := s.assembler.NewBuilder(workDir)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	defer builder.Close()

	for _, doc := range result.Matches.Documents() {
		for _, page := range doc.Pages {
			if err := builder.AddPage(ctx, doc.Document.Path, page); err != nil {
				result.PagesSkipped++
				err = fmt.Errorf("%w: page %d: %w", domain.ErrPageCopy, page, err)
				logger.Warn("%s: %v", doc.Document.DisplayName(), err)
				sink.Emit(domain.LogEvent(domain.LevelWarn, doc.Document.DisplayName(), err.Error()))
			}
		}
	}

	if builder.PageCount() == 0 {
		sink.Emit(domain.LogEvent(domain.LevelWarn, p.req.OutputDirectory, "No pages could be copied, nothing written"))
		return nil
	}

	if err := os.MkdirAll(p.req.OutputDirectory, 0755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	target, err := uniquePath(p.req.OutputDirectory, resultsPrefix+stamp+".pdf", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	if err := builder.WriteFile(ctx, target); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, target, err)
	}

	result.FilesProduced = 1
	result.OutputPaths = []string{target}
	sink.Emit(domain.LogEvent(domain.LevelInfo, target,
		fmt.Sprintf("Wrote %d page(s)", builder.PageCount())))
	return nil
}

// copyDocuments copies each matching document once into a new timestamped
// folder. Documents that cannot be copied are logged and skipped.
func (s *ScanService) copyDocuments(
	ctx context.Context,
	p *plan,
	stamp string,
	result *domain.ScanResult,
	sink domain.EventSink,
) error {
	if err := os.MkdirAll(p.req.OutputDirectory, 0755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	folder, err := uniquePath(p.req.OutputDirectory, resultsPrefix+stamp, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	if err := os.Mkdir(folder, 0755); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}

	copied := make(map[string]bool)
	taken := make(map[string]bool)
	for _, doc := range result.Matches.Documents() {
		src := doc.Document.Path
		if copied[src] {
			continue
		}
		dst, err := uniquePath(folder, doc.Document.BaseName(), taken)
		if err == nil {
			err = s.copier.Copy(ctx, src, dst)
		}
		if err != nil {
			err = fmt.Errorf("%w: %w", domain.ErrCopy, err)
			logger.Warn("%s: %v", doc.Document.DisplayName(), err)
			sink.Emit(domain.LogEvent(domain.LevelWarn, doc.Document.DisplayName(), err.Error()))
			continue
		}
		copied[src] = true
		taken[filepath.Base(dst)] = true
		result.FilesProduced++
		sink.Emit(domain.LogEvent(domain.LevelInfo, doc.Document.DisplayName(), "Copied to "+dst))
	}

	if result.FilesProduced == 0 {
		_ = os.Remove(folder)
		sink.Emit(domain.LogEvent(domain.LevelWarn, p.req.OutputDirectory, "No documents could be copied, nothing written"))
		return nil
	}
	result.OutputPaths = []string{folder}
	return nil
}

// uniquePath returns dir/name, or dir/stem_N.ext for the first N that is
// neither on disk nor in taken.
func uniquePath(dir, name string, taken map[string]bool) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 1; ; n++ {
		if !taken[candidate] {
			_, err := os.Lstat(filepath.Join(dir, candidate))
			if errors.Is(err, os.ErrNotExist) {
				return filepath.Join(dir, candidate), nil
			}
			if err != nil {
				return "", err
			}
		}
		candidate = fmt.Sprintf("%s_%d%s", stem, n, ext)
	}
}
