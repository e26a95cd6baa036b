package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// --- Mock implementations of driven ports for scan testing ---

// mockCollector implements driven.Collector.
type mockCollector struct {
	candidates []domain.CandidateFile
	err        error
	panicMsg   string

	mu   sync.Mutex
	opts driven.CollectOptions
}

func (m *mockCollector) Collect(ctx context.Context, _ string, opts driven.CollectOptions) ([]domain.CandidateFile, error) {
	m.mu.Lock()
	m.opts = opts
	m.mu.Unlock()
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.candidates, nil
}

func (m *mockCollector) lastOptions() driven.CollectOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// mockExtractor implements driven.PageTextExtractor over in-memory page text.
type mockExtractor struct {
	backend   domain.ExtractorBackend
	docs      map[string][]string
	openErr   map[string]error
	pageErr   map[string]map[int]error
	panicOn   map[string]bool
	pageDelay time.Duration

	// onOpen runs on the worker goroutine before a document is opened.
	onOpen func(path string)

	mu     sync.Mutex
	opened []string
}

func newMockExtractor(docs map[string][]string) *mockExtractor {
	return &mockExtractor{backend: domain.ExtractorTabula, docs: docs}
}

func (m *mockExtractor) Backend() domain.ExtractorBackend { return m.backend }

func (m *mockExtractor) Open(_ context.Context, path string) (driven.PDFDocument, error) {
	m.mu.Lock()
	m.opened = append(m.opened, path)
	m.mu.Unlock()

	if m.onOpen != nil {
		m.onOpen(path)
	}
	if m.panicOn[path] {
		panic("malformed xref table")
	}
	if err := m.openErr[path]; err != nil {
		return nil, err
	}
	pages, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("no such document: %s", path)
	}
	return &mockDocument{pages: pages, errs: m.pageErr[path], delay: m.pageDelay}, nil
}

func (m *mockExtractor) openedPaths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...)
}

type mockDocument struct {
	pages []string
	errs  map[int]error
	delay time.Duration
}

func (d *mockDocument) PageCount() int { return len(d.pages) }

func (d *mockDocument) PageText(i int) (string, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	if err := d.errs[i]; err != nil {
		return "", err
	}
	return d.pages[i], nil
}

func (d *mockDocument) Close() error { return nil }

// mockRegistry implements driven.ExtractorRegistry.
type mockRegistry struct {
	extractors map[domain.ExtractorBackend]driven.PageTextExtractor
}

func newMockRegistry(extractors ...driven.PageTextExtractor) *mockRegistry {
	r := &mockRegistry{extractors: make(map[domain.ExtractorBackend]driven.PageTextExtractor)}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

func (r *mockRegistry) Get(backend domain.ExtractorBackend) (driven.PageTextExtractor, error) {
	e, ok := r.extractors[backend]
	if !ok {
		return nil, fmt.Errorf("%w: extractor %q", domain.ErrUnsupportedType, backend)
	}
	return e, nil
}

func (r *mockRegistry) Register(e driven.PageTextExtractor) { r.extractors[e.Backend()] = e }

func (r *mockRegistry) Backends() []domain.ExtractorBackend {
	out := make([]domain.ExtractorBackend, 0, len(r.extractors))
	for b := range r.extractors {
		out = append(out, b)
	}
	return out
}

// mockAssembler implements driven.PageAssembler. WriteFile writes one
// "path#page" line per added page.
type mockAssembler struct {
	failPages map[string]map[int]bool
	writeErr  error

	mu      sync.Mutex
	added   []domain.PageMatch
	written string
	workDir string
}

func (m *mockAssembler) NewBuilder(workDir string) (driven.PageBuilder, error) {
	m.mu.Lock()
	m.workDir = workDir
	m.mu.Unlock()
	return &mockBuilder{asm: m}, nil
}

func (m *mockAssembler) pages() []domain.PageMatch {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.PageMatch(nil), m.added...)
}

type mockBuilder struct {
	asm   *mockAssembler
	pages []domain.PageMatch
}

func (b *mockBuilder) AddPage(_ context.Context, src string, pageIndex int) error {
	if b.asm.failPages[src][pageIndex] {
		return errors.New("broken page object")
	}
	b.pages = append(b.pages, domain.PageMatch{DocumentPath: src, PageIndex: pageIndex})
	b.asm.mu.Lock()
	b.asm.added = append(b.asm.added, domain.PageMatch{DocumentPath: src, PageIndex: pageIndex})
	b.asm.mu.Unlock()
	return nil
}

func (b *mockBuilder) PageCount() int { return len(b.pages) }

func (b *mockBuilder) WriteFile(_ context.Context, path string) error {
	if b.asm.writeErr != nil {
		return b.asm.writeErr
	}
	lines := make([]string, 0, len(b.pages))
	for _, p := range b.pages {
		lines = append(lines, fmt.Sprintf("%s#%d", p.DocumentPath, p.PageIndex))
	}
	b.asm.mu.Lock()
	b.asm.written = path
	b.asm.mu.Unlock()
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

func (b *mockBuilder) Close() error { return nil }

// mockCopier implements driven.DocumentCopier with real file copies.
type mockCopier struct {
	fail map[string]bool

	mu     sync.Mutex
	copies map[string]string
}

func (m *mockCopier) Copy(_ context.Context, src, dst string) error {
	if m.fail[src] {
		return fmt.Errorf("read %s: input/output error", src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.copies == nil {
		m.copies = make(map[string]string)
	}
	m.copies[dst] = src
	return nil
}

// mockScratch implements driven.ScratchProvider under a test temp dir.
type mockScratch struct {
	base string
	err  error

	mu      sync.Mutex
	dirs    []string
	cleaned int
}

func (m *mockScratch) Create(runID string) (string, func() error, error) {
	if m.err != nil {
		return "", nil, m.err
	}
	dir := filepath.Join(m.base, runID)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", nil, err
	}
	m.mu.Lock()
	m.dirs = append(m.dirs, dir)
	m.mu.Unlock()

	var once sync.Once
	return dir, func() error {
		var err error
		once.Do(func() {
			err = os.RemoveAll(dir)
			m.mu.Lock()
			m.cleaned++
			m.mu.Unlock()
		})
		return err
	}, nil
}

func (m *mockScratch) cleanups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleaned
}

// eventRecorder collects events from a sink.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.ScanEvent
}

func (r *eventRecorder) sink(e domain.ScanEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofKind(kind domain.EventKind) []domain.ScanEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ScanEvent
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) last() domain.ScanEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

// scanFixture wires a ScanService to mocks.
type scanFixture struct {
	root      string
	collector *mockCollector
	extractor *mockExtractor
	assembler *mockAssembler
	copier    *mockCopier
	scratch   *mockScratch
	service   *ScanService
}

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newScanFixture(t *testing.T, candidates []domain.CandidateFile, docs map[string][]string) *scanFixture {
	t.Helper()
	f := &scanFixture{
		root:      t.TempDir(),
		collector: &mockCollector{candidates: candidates},
		extractor: newMockExtractor(docs),
		assembler: &mockAssembler{},
		copier:    &mockCopier{},
		scratch:   &mockScratch{base: t.TempDir()},
	}
	f.service = NewScanService(f.collector, newMockRegistry(f.extractor), f.assembler, f.copier, f.scratch, nil, nil)
	f.service.now = func() time.Time { return fixedNow }
	ids := 0
	f.service.newID = func() string {
		ids++
		return fmt.Sprintf("run-%d", ids)
	}
	return f
}

func (f *scanFixture) request(query string, mode domain.Mode) domain.ScanRequest {
	return domain.ScanRequest{RootDirectory: f.root, Query: query, Mode: mode}
}

func (f *scanFixture) resultsDir() string {
	return filepath.Join(f.root, domain.DefaultResultsDirName)
}

// writeFile creates a file under root and returns its path.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
