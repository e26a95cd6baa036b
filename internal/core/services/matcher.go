package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// containsFold reports whether needle, already lower-cased, occurs in text
// ignoring case.
func containsFold(text, needle string) bool {
	if text == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), needle)
}

// matchDocument returns the zero-based indices of pages whose text contains
// needle. Pages that fail extraction count as non-matching. Failing to open
// the document, a timeout or a panic inside the PDF library is a
// domain.ErrDocumentParse.
func matchDocument(ctx context.Context, extractor driven.PageTextExtractor, path, needle string) (pages []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: %s: %v", domain.ErrDocumentParse, path, r)
		}
	}()

	doc, err := extractor.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrDocumentParse, path, err)
	}
	defer doc.Close()

	count := doc.PageCount()
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %s: stopped at page %d: %w", domain.ErrDocumentParse, path, i, err)
		}
		text, err := doc.PageText(i)
		if err != nil {
			logger.Debug("%v", fmt.Errorf("%w: %s page %d: %w", domain.ErrPageExtract, path, i, err))
			continue
		}
		if containsFold(text, needle) {
			pages = append(pages, i)
		}
	}
	logger.Debug("%s: %d page(s), %d match(es)", path, count, len(pages))
	return pages, nil
}
