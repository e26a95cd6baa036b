package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func newTestServer(t *testing.T, scan *mockScanService, history *mockHistoryService) *Server {
	t.Helper()
	ports := &Ports{Scan: scan}
	if history != nil {
		ports.History = history
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleScan(t *testing.T) {
	ctx := context.Background()

	t.Run("returns matches with one-based pages", func(t *testing.T) {
		set := domain.NewDocumentMatchSet()
		set.Add(domain.CandidateFile{Path: "/data/a.pdf"}, 0)
		set.Add(domain.CandidateFile{Path: "/data/a.pdf"}, 2)
		set.Add(domain.CandidateFile{Path: "/tmp/x/c.pdf", ArchivePath: "/data/b.zip", EntryName: "c.pdf"}, 1)

		scan := &mockScanService{
			result: &domain.ScanResult{
				RunID:            "run-1",
				Request:          domain.ScanRequest{Mode: domain.ModePagesOnly},
				State:            domain.RunStateCompleted,
				DocumentsTotal:   3,
				DocumentsScanned: 3,
				DocumentsSkipped: 1,
				TotalMatches:     3,
				Matches:          set,
				FilesProduced:    1,
				OutputPaths:      []string{"/data/results/results_20250101-000000.pdf"},
				Elapsed:          2 * time.Second,
			},
			events: []domain.ScanEvent{
				domain.LogEvent(domain.LevelInfo, "/data/b.zip", "Extracted c.pdf"),
				domain.LogEvent(domain.LevelWarn, "/data/bad.pdf", "Skipping unreadable document"),
				domain.ProgressEvent(3, 3),
			},
		}
		server := newTestServer(t, scan, nil)

		_, output, err := server.handleScan(ctx, nil, ScanInput{
			Root:      "/data",
			Query:     "invoice",
			Mode:      "pages",
			Extractor: "ledongthuc",
		})
		require.NoError(t, err)

		assert.Equal(t, "/data", scan.request.RootDirectory)
		assert.Equal(t, "invoice", scan.request.Query)
		assert.Equal(t, domain.ModePagesOnly, scan.request.Mode)
		assert.Equal(t, domain.ExtractorLedongthuc, scan.request.Extractor)

		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, "completed", output.State)
		assert.Equal(t, "pages", output.Mode)
		assert.Equal(t, 3, output.TotalMatches)
		assert.Equal(t, 1, output.DocumentsSkipped)
		assert.Equal(t, int64(2000), output.ElapsedMS)
		assert.Equal(t, []DocumentMatch{
			{Document: "/data/a.pdf", Pages: []int{1, 3}},
			{Document: "/data/b.zip!/c.pdf", Pages: []int{2}},
		}, output.Matches)
		assert.Equal(t, []string{"/data/bad.pdf: Skipping unreadable document"}, output.Warnings)
	})

	t.Run("no matches returns empty lists", func(t *testing.T) {
		scan := &mockScanService{
			result: &domain.ScanResult{
				RunID:   "run-2",
				Request: domain.ScanRequest{Mode: domain.ModeWholeDocuments},
				State:   domain.RunStateCompleted,
				Matches: domain.NewDocumentMatchSet(),
			},
		}
		server := newTestServer(t, scan, nil)

		_, output, err := server.handleScan(ctx, nil, ScanInput{Root: "/data", Query: "x"})
		require.NoError(t, err)
		assert.NotNil(t, output.Matches)
		assert.Empty(t, output.Matches)
		assert.NotNil(t, output.OutputPaths)
		assert.Empty(t, output.OutputPaths)
		assert.Equal(t, domain.Mode(""), scan.request.Mode)
	})

	t.Run("invalid mode", func(t *testing.T) {
		server := newTestServer(t, &mockScanService{}, nil)

		_, _, err := server.handleScan(ctx, nil, ScanInput{Root: "/data", Query: "x", Mode: "chapters"})
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("scan failure", func(t *testing.T) {
		scan := &mockScanService{err: errors.New("root directory does not exist")}
		server := newTestServer(t, scan, nil)

		_, _, err := server.handleScan(ctx, nil, ScanInput{Root: "/missing", Query: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root directory does not exist")
	})

	t.Run("cancelled", func(t *testing.T) {
		scan := &mockScanService{
			result: &domain.ScanResult{State: domain.RunStateCancelled},
			err:    domain.ErrCancelled,
		}
		server := newTestServer(t, scan, nil)

		_, _, err := server.handleScan(ctx, nil, ScanInput{Root: "/data", Query: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no output written")
	})
}

func testRecords() []domain.ScanRecord {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []domain.ScanRecord{
		{
			ID:            "run-2",
			RootDirectory: "/data",
			Query:         "invoice",
			Mode:          domain.ModeWholeDocuments,
			State:         domain.RunStateCompleted,
			TotalMatches:  2,
			FilesProduced: 1,
			OutputPaths:   []string{"/data/results/results_20250102-030405"},
			Matches: []domain.PageMatch{
				{DocumentPath: "/data/a.pdf", PageIndex: 0},
				{DocumentPath: "/data/a.pdf", PageIndex: 1},
			},
			StartedAt: base,
			Elapsed:   time.Second,
		},
		{
			ID:            "run-1",
			RootDirectory: "/data",
			Query:         "receipt",
			Mode:          domain.ModePagesOnly,
			State:         domain.RunStateFailed,
			Error:         "write failed",
			StartedAt:     base.Add(-time.Hour),
		},
	}
}

func TestServer_handleListRuns(t *testing.T) {
	ctx := context.Background()

	t.Run("returns runs", func(t *testing.T) {
		history := &mockHistoryService{records: testRecords()}
		server := newTestServer(t, &mockScanService{}, history)

		_, output, err := server.handleListRuns(ctx, nil, ListRunsInput{})
		require.NoError(t, err)

		assert.Equal(t, defaultRunLimit, history.lastLimit)
		assert.Equal(t, 2, output.Count)
		require.Len(t, output.Runs, 2)
		assert.Equal(t, "run-2", output.Runs[0].RunID)
		assert.Equal(t, "2025-01-02T03:04:05Z", output.Runs[0].StartedAt)
		assert.Equal(t, "documents", output.Runs[0].Mode)
		assert.Equal(t, "write failed", output.Runs[1].Error)
		assert.NotNil(t, output.Runs[1].OutputPaths)
	})

	t.Run("limit", func(t *testing.T) {
		history := &mockHistoryService{records: testRecords()}
		server := newTestServer(t, &mockScanService{}, history)

		_, output, err := server.handleListRuns(ctx, nil, ListRunsInput{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, history.lastLimit)
		assert.Equal(t, 1, output.Count)
	})

	t.Run("no history service returns empty list", func(t *testing.T) {
		server := newTestServer(t, &mockScanService{}, nil)

		_, output, err := server.handleListRuns(ctx, nil, ListRunsInput{})
		require.NoError(t, err)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Runs)
	})

	t.Run("history failure", func(t *testing.T) {
		history := &mockHistoryService{err: errors.New("database locked")}
		server := newTestServer(t, &mockScanService{}, history)

		_, _, err := server.handleListRuns(ctx, nil, ListRunsInput{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database locked")
	})
}
