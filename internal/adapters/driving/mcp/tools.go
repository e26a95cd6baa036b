package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

const defaultRunLimit = 20

// ScanInput is the input schema for the scan_pdfs tool.
type ScanInput struct {
	Root            string `json:"root" jsonschema:"directory to scan, including PDFs inside ZIP archives"`
	Query           string `json:"query" jsonschema:"text to look for, matched case-insensitively per page"`
	Mode            string `json:"mode,omitempty" jsonschema:"pages (one PDF of matching pages) or documents (copies of matching files)"`
	OutputDirectory string `json:"output_directory,omitempty" jsonschema:"where results are written (default from settings or <root>/results)"`
	Extractor       string `json:"extractor,omitempty" jsonschema:"text extraction backend: tabula or ledongthuc"`
}

// ScanOutput is the output schema for the scan_pdfs tool.
type ScanOutput struct {
	RunID            string          `json:"run_id"`
	State            string          `json:"state"`
	Mode             string          `json:"mode"`
	DocumentsTotal   int             `json:"documents_total"`
	DocumentsScanned int             `json:"documents_scanned"`
	DocumentsSkipped int             `json:"documents_skipped"`
	TotalMatches     int             `json:"total_matches"`
	FilesProduced    int             `json:"files_produced"`
	OutputPaths      []string        `json:"output_paths"`
	Matches          []DocumentMatch `json:"matches"`
	Warnings         []string        `json:"warnings,omitempty"`
	ElapsedMS        int64           `json:"elapsed_ms"`
}

// DocumentMatch lists the matching pages of one document. Pages are one-based.
type DocumentMatch struct {
	Document string `json:"document"`
	Pages    []int  `json:"pages"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 20)"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunSummary `json:"runs"`
	Count int          `json:"count"`
}

// RunSummary is a past run without its match list.
type RunSummary struct {
	RunID         string   `json:"run_id"`
	StartedAt     string   `json:"started_at"`
	State         string   `json:"state"`
	Root          string   `json:"root"`
	Query         string   `json:"query"`
	Mode          string   `json:"mode"`
	TotalMatches  int      `json:"total_matches"`
	FilesProduced int      `json:"files_produced"`
	OutputPaths   []string `json:"output_paths"`
	Error         string   `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan_pdfs",
		Description: "Scan a directory of PDFs for pages containing text and write the matches",
	}, s.handleScan)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List past scans, most recent first",
	}, s.handleListRuns)
}

// handleScan handles the scan_pdfs tool invocation.
func (s *Server) handleScan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanInput,
) (*mcp.CallToolResult, ScanOutput, error) {
	req := domain.ScanRequest{
		RootDirectory:   input.Root,
		Query:           input.Query,
		OutputDirectory: input.OutputDirectory,
	}
	if input.Mode != "" {
		mode, err := domain.ParseMode(input.Mode)
		if err != nil {
			return nil, ScanOutput{}, err
		}
		req.Mode = mode
	}
	if input.Extractor != "" {
		req.Extractor = domain.ExtractorBackend(input.Extractor)
	}

	var mu sync.Mutex
	var warnings []string
	sink := func(e domain.ScanEvent) {
		if e.Kind != domain.EventLog || e.Level == domain.LevelInfo {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if e.Path != "" {
			warnings = append(warnings, fmt.Sprintf("%s: %s", e.Path, e.Message))
		} else {
			warnings = append(warnings, e.Message)
		}
	}

	result, err := s.ports.Scan.Scan(ctx, req, sink)
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return nil, ScanOutput{}, fmt.Errorf("scan cancelled, no output written")
		}
		return nil, ScanOutput{}, err
	}

	mu.Lock()
	defer mu.Unlock()
	return nil, newScanOutput(result, warnings), nil
}

func newScanOutput(r *domain.ScanResult, warnings []string) ScanOutput {
	out := ScanOutput{
		RunID:            r.RunID,
		State:            r.State.String(),
		Mode:             r.Request.Mode.String(),
		DocumentsTotal:   r.DocumentsTotal,
		DocumentsScanned: r.DocumentsScanned,
		DocumentsSkipped: r.DocumentsSkipped,
		TotalMatches:     r.TotalMatches,
		FilesProduced:    r.FilesProduced,
		OutputPaths:      append([]string{}, r.OutputPaths...),
		Matches:          []DocumentMatch{},
		Warnings:         warnings,
		ElapsedMS:        r.Elapsed.Milliseconds(),
	}
	for _, d := range r.Matches.Documents() {
		pages := make([]int, len(d.Pages))
		for i, p := range d.Pages {
			pages[i] = p + 1
		}
		out.Matches = append(out.Matches, DocumentMatch{Document: d.Document.DisplayName(), Pages: pages})
	}
	return out
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	output := ListRunsOutput{Runs: []RunSummary{}}
	if s.ports.History == nil {
		return nil, output, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	records, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	for i := range records {
		output.Runs = append(output.Runs, newRunSummary(&records[i]))
	}
	output.Count = len(output.Runs)
	return nil, output, nil
}

func newRunSummary(r *domain.ScanRecord) RunSummary {
	return RunSummary{
		RunID:         r.ID,
		StartedAt:     r.StartedAt.UTC().Format(timeLayout),
		State:         r.State.String(),
		Root:          r.RootDirectory,
		Query:         r.Query,
		Mode:          r.Mode.String(),
		TotalMatches:  r.TotalMatches,
		FilesProduced: r.FilesProduced,
		OutputPaths:   append([]string{}, r.OutputPaths...),
		Error:         r.Error,
	}
}
