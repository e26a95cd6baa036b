package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure WatchService implements the interface.
var _ driving.WatchService = (*WatchService)(nil)

// errWatcherStopped is returned when the change stream ends on its own.
var errWatcherStopped = errors.New("watcher stopped")

// WatchService rescans a directory when PDFs or archives below it change.
type WatchService struct {
	scanner  driving.ScanService
	watcher  driven.ChangeWatcher
	settings driving.SettingsService
}

// NewWatchService creates a new watch service. settings is optional.
func NewWatchService(scanner driving.ScanService, watcher driven.ChangeWatcher, settings driving.SettingsService) *WatchService {
	return &WatchService{
		scanner:  scanner,
		watcher:  watcher,
		settings: settings,
	}
}

// Watch runs an initial scan, then at most one scan per cooldown period
// while changes keep arriving. Changes inside the output directory are
// ignored so results never trigger a rescan.
func (w *WatchService) Watch(
	ctx context.Context,
	req domain.ScanRequest,
	sink domain.EventSink,
	onResult func(*domain.ScanResult),
) error {
	settings := domain.DefaultAppSettings()
	if w.settings != nil {
		if s, err := w.settings.Get(); err == nil && s != nil {
			settings = *s
		}
	}

	root, err := filepath.Abs(req.RootDirectory)
	if err != nil {
		return fmt.Errorf("%w: root directory: %w", domain.ErrInvalidInput, err)
	}
	req.RootDirectory = root
	if req.OutputDirectory == "" {
		req.OutputDirectory = settings.Output.Directory
	}
	if req.OutputDirectory == "" {
		req.OutputDirectory = filepath.Join(root, domain.DefaultResultsDirName)
	}
	if req.OutputDirectory, err = filepath.Abs(req.OutputDirectory); err != nil {
		return fmt.Errorf("%w: output directory: %w", domain.ErrInvalidInput, err)
	}

	changes, err := w.watcher.Watch(ctx, root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}

	limit := rate.Inf
	if settings.Watch.Cooldown > 0 {
		limit = rate.Every(settings.Watch.Cooldown)
	}
	limiter := rate.NewLimiter(limit, 1)
	trigger := make(chan struct{}, 1)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case change, ok := <-changes:
				if !ok {
					if gctx.Err() != nil {
						return nil
					}
					return errWatcherStopped
				}
				if isWithin(change.Path, req.OutputDirectory) {
					continue
				}
				logger.Debug("watch: %s %s", change.Op, change.Path)
				select {
				case trigger <- struct{}{}:
				default:
				}
			}
		}
	})

	g.Go(func() error {
		limiter.Allow()
		if err := w.scanOnce(gctx, req, sink, onResult); err != nil {
			return err
		}
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-trigger:
				if err := limiter.Wait(gctx); err != nil {
					return nil
				}
				// Changes that arrived while waiting are covered by this scan.
				select {
				case <-trigger:
				default:
				}
				if err := w.scanOnce(gctx, req, sink, onResult); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

// scanOnce runs one scan. Only rejected requests end the watch.
func (w *WatchService) scanOnce(
	ctx context.Context,
	req domain.ScanRequest,
	sink domain.EventSink,
	onResult func(*domain.ScanResult),
) error {
	result, err := w.scanner.Scan(ctx, req, sink)
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrPermissionDenied):
		return err
	case errors.Is(err, domain.ErrScanInProgress):
		logger.Warn("watch: scan already in progress, skipping")
		return nil
	}
	if result != nil && onResult != nil {
		onResult(result)
	}
	return nil
}

// isWithin reports whether path is dir or below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
