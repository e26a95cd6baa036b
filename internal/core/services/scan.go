package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure ScanService implements the interface.
var _ driving.ScanService = (*ScanService)(nil)

// ScanService runs the collect, match and output pipeline.
// It allows a single in-flight run.
type ScanService struct {
	collector  driven.Collector
	extractors driven.ExtractorRegistry
	assembler  driven.PageAssembler
	copier     driven.DocumentCopier
	scratch    driven.ScratchProvider
	history    driven.HistoryStore
	settings   driving.SettingsService

	now   func() time.Time
	newID func() string

	mu     sync.Mutex
	state  domain.RunState
	cancel context.CancelFunc
}

// NewScanService creates a new scan service.
// history and settings are optional: without history runs are not recorded,
// without settings the defaults apply.
func NewScanService(
	collector driven.Collector,
	extractors driven.ExtractorRegistry,
	assembler driven.PageAssembler,
	copier driven.DocumentCopier,
	scratch driven.ScratchProvider,
	history driven.HistoryStore,
	settings driving.SettingsService,
) *ScanService {
	return &ScanService{
		collector:  collector,
		extractors: extractors,
		assembler:  assembler,
		copier:     copier,
		scratch:    scratch,
		history:    history,
		settings:   settings,
		now:        time.Now,
		newID:      uuid.NewString,
		state:      domain.RunStateIdle,
	}
}

// plan is a validated request plus everything resolved from settings.
type plan struct {
	runID     string
	req       domain.ScanRequest
	settings  domain.AppSettings
	extractor driven.PageTextExtractor
}

// Scan runs a scan on the calling goroutine.
func (s *ScanService) Scan(ctx context.Context, req domain.ScanRequest, sink domain.EventSink) (*domain.ScanResult, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	runCtx, _, release, err := s.claim(ctx)
	if err != nil {
		return nil, err
	}

	result, runErr := s.execute(runCtx, p, sink)
	s.record(p, result)
	release()

	sink.Emit(domain.ScanEvent{Kind: domain.EventFinished, Result: result})
	return result, runErr
}

// Start validates the request and runs it on a background worker.
func (s *ScanService) Start(ctx context.Context, req domain.ScanRequest) (driving.Run, error) {
	p, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	runCtx, cancel, release, err := s.claim(ctx)
	if err != nil {
		return nil, err
	}

	run := newScanRun(p.runID, cancel)
	go func() {
		result, runErr := s.execute(runCtx, p, run.pump.emit)
		s.record(p, result)
		release()
		run.finish(result, runErr)
	}()
	return run, nil
}

// Cancel requests cooperative termination of the in-flight run.
func (s *ScanService) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// State returns the current lifecycle state.
func (s *ScanService) State() domain.RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// claim moves the service from Idle to Running.
func (s *ScanService) claim(ctx context.Context) (context.Context, context.CancelFunc, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == domain.RunStateRunning {
		return nil, nil, nil, domain.ErrScanInProgress
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.state = domain.RunStateRunning
	s.cancel = cancel

	var once sync.Once
	release := func() {
		once.Do(func() {
			s.mu.Lock()
			s.state = domain.RunStateIdle
			s.cancel = nil
			s.mu.Unlock()
			cancel()
		})
	}
	return runCtx, cancel, release, nil
}

// prepare validates a request and resolves defaults. Nothing on disk
// is modified.
func (s *ScanService) prepare(req domain.ScanRequest) (*plan, error) {
	if s.State() == domain.RunStateRunning {
		return nil, domain.ErrScanInProgress
	}

	settings := s.loadSettings()
	if req.Mode == "" {
		req.Mode = settings.Scan.Mode
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	root, err := filepath.Abs(req.RootDirectory)
	if err != nil {
		return nil, fmt.Errorf("%w: root directory: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: root directory: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: root directory %s is not a directory", domain.ErrInvalidInput, root)
	}
	req.RootDirectory = root

	out := req.OutputDirectory
	if out == "" {
		out = settings.Output.Directory
	}
	if out == "" {
		out = filepath.Join(root, domain.DefaultResultsDirName)
	}
	if out, err = filepath.Abs(out); err != nil {
		return nil, fmt.Errorf("%w: output directory: %w", domain.ErrInvalidInput, err)
	}
	if err := checkWritable(out); err != nil {
		return nil, err
	}
	req.OutputDirectory = out

	backend := req.Extractor
	if backend == "" {
		backend = settings.Scan.Extractor
	}
	extractor, err := s.extractors.Get(backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	req.Extractor = backend

	return &plan{
		runID:     s.newID(),
		req:       req,
		settings:  settings,
		extractor: extractor,
	}, nil
}

func (s *ScanService) loadSettings() domain.AppSettings {
	if s.settings == nil {
		return domain.DefaultAppSettings()
	}
	settings, err := s.settings.Get()
	if err != nil || settings == nil {
		logger.Warn("Failed to load settings, using defaults: %v", err)
		return domain.DefaultAppSettings()
	}
	return *settings
}

// checkWritable probes dir, or its nearest existing ancestor when dir does
// not exist yet, by creating and removing a temporary file.
func checkWritable(dir string) error {
	probeDir := dir
	for {
		info, err := os.Stat(probeDir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%w: %s is not a directory", domain.ErrPermissionDenied, probeDir)
			}
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
		}
		parent := filepath.Dir(probeDir)
		if parent == probeDir {
			return fmt.Errorf("%w: no existing parent for %s", domain.ErrPermissionDenied, dir)
		}
		probeDir = parent
	}

	f, err := os.CreateTemp(probeDir, ".pdfsift-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrPermissionDenied, dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// execute runs the pipeline. Scratch cleanup always runs, including
// after a recovered panic.
func (s *ScanService) execute(ctx context.Context, p *plan, sink domain.EventSink) (result *domain.ScanResult, err error) {
	start := s.now()
	result = &domain.ScanResult{
		RunID:     p.runID,
		Request:   p.req,
		State:     domain.RunStateRunning,
		Matches:   domain.NewDocumentMatchSet(),
		StartedAt: start,
	}

	logger.Section("Scan " + p.runID)
	logger.Info("root=%s query=%q mode=%s extractor=%s", p.req.RootDirectory, p.req.Query, p.req.Mode, p.extractor.Backend())

	scratchDir, cleanup, err := s.scratch.Create(p.runID)
	if err != nil {
		return s.fail(result, sink, fmt.Errorf("create scratch directory: %w", err))
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = s.fail(result, sink, fmt.Errorf("unexpected error: %v", r))
		}
		if cerr := cleanup(); cerr != nil {
			logger.Warn("Failed to remove scratch directory %s: %v", scratchDir, cerr)
		}
		result.Elapsed = s.now().Sub(start)
		logger.Info("Run %s %s in %s", p.runID, result.State, result.Elapsed.Round(time.Millisecond))
	}()

	done := logger.Timed("collect")
	candidates, err := s.collector.Collect(ctx, p.req.RootDirectory, driven.CollectOptions{
		ScratchDir: scratchDir,
		Exclude:    []string{p.req.OutputDirectory},
		SkipHidden: p.settings.Scan.SkipHidden,
		Sink:       sink,
	})
	done()
	if err != nil {
		if ctx.Err() != nil {
			return s.cancelled(result, sink)
		}
		return s.fail(result, sink, fmt.Errorf("collect: %w", err))
	}

	result.DocumentsTotal = len(candidates)
	sink.Emit(domain.LogEvent(domain.LevelInfo, p.req.RootDirectory,
		fmt.Sprintf("Found %d PDF document(s)", len(candidates))))
	sink.Emit(domain.ProgressEvent(0, len(candidates)))

	done = logger.Timed("match")
	needle := strings.ToLower(p.req.Query)
	for i, doc := range candidates {
		if ctx.Err() != nil {
			break
		}
		sink.Emit(domain.LogEvent(domain.LevelInfo, doc.DisplayName(), "Scanning"))

		pages, err := s.matchCandidate(ctx, p, doc, needle)
		if err != nil {
			result.DocumentsSkipped++
			logger.Warn("Skipping %s: %v", doc.DisplayName(), err)
			sink.Emit(domain.LogEvent(domain.LevelWarn, doc.DisplayName(), "Skipped: "+err.Error()))
		}
		for _, page := range pages {
			result.Matches.Add(doc, page)
		}
		if len(pages) > 0 {
			sink.Emit(domain.LogEvent(domain.LevelInfo, doc.DisplayName(),
				fmt.Sprintf("%d matching page(s)", len(pages))))
		}

		result.DocumentsScanned = i + 1
		sink.Emit(domain.ProgressEvent(i+1, len(candidates)))
	}
	done()

	if ctx.Err() != nil {
		return s.cancelled(result, sink)
	}

	result.TotalMatches = result.Matches.TotalMatches()
	if result.TotalMatches == 0 {
		sink.Emit(domain.LogEvent(domain.LevelInfo, p.req.RootDirectory, "No matches found, nothing written"))
		result.State = domain.RunStateCompleted
		return result, nil
	}

	done = logger.Timed("output")
	defer done()
	// Output is not interruptible: a run that got this far completes.
	outCtx := context.WithoutCancel(ctx)
	stamp := start.Format(domain.TimestampLayout)
	switch p.req.Mode {
	case domain.ModePagesOnly:
		err = s.writePages(outCtx, p, scratchDir, stamp, result, sink)
	case domain.ModeWholeDocuments:
		err = s.copyDocuments(outCtx, p, stamp, result, sink)
	}
	if err != nil {
		return s.fail(result, sink, err)
	}

	result.State = domain.RunStateCompleted
	return result, nil
}

// matchCandidate scans one document, bounded by the per-document timeout.
// Cancelling the run does not interrupt the document in progress.
func (s *ScanService) matchCandidate(ctx context.Context, p *plan, doc domain.CandidateFile, needle string) ([]int, error) {
	docCtx := context.WithoutCancel(ctx)
	if timeout := p.settings.Scan.DocumentTimeout; timeout > 0 {
		var cancel context.CancelFunc
		docCtx, cancel = context.WithTimeout(docCtx, timeout)
		defer cancel()
	}
	return matchDocument(docCtx, p.extractor, doc.Path, needle)
}

func (s *ScanService) fail(result *domain.ScanResult, sink domain.EventSink, err error) (*domain.ScanResult, error) {
	logger.Error("Scan %s failed: %v", result.RunID, err)
	result.State = domain.RunStateFailed
	result.Err = err
	sink.Emit(domain.LogEvent(domain.LevelError, result.Request.RootDirectory, err.Error()))
	return result, err
}

// cancelled discards partial matches: a cancelled run produces nothing.
func (s *ScanService) cancelled(result *domain.ScanResult, sink domain.EventSink) (*domain.ScanResult, error) {
	result.State = domain.RunStateCancelled
	result.Err = domain.ErrCancelled
	result.Matches = domain.NewDocumentMatchSet()
	result.TotalMatches = 0
	sink.Emit(domain.LogEvent(domain.LevelWarn, result.Request.RootDirectory,
		fmt.Sprintf("Cancelled after %d of %d document(s)", result.DocumentsScanned, result.DocumentsTotal)))
	return result, domain.ErrCancelled
}

// record stores the run in history and applies retention.
func (s *ScanService) record(p *plan, result *domain.ScanResult) {
	if s.history == nil || !p.settings.History.Enabled || result == nil {
		return
	}
	ctx := context.Background()
	rec := domain.NewScanRecord(result)
	if err := s.history.Save(ctx, &rec); err != nil {
		logger.Warn("Failed to record run %s: %v", result.RunID, err)
		return
	}
	if keep := p.settings.History.Keep; keep > 0 {
		if _, err := s.history.Prune(ctx, keep); err != nil {
			logger.Warn("Failed to prune history: %v", err)
		}
	}
}
