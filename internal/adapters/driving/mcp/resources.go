package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for pdfsift resources.
	uriScheme = "pdfsift://"

	timeLayout = time.RFC3339
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Past scans, most recent first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run",
		Description: "One past scan with its matching pages",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// handleRunsResource returns the stored runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	records, err := s.ports.History.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	summaries := make([]RunSummary, len(records))
	for i := range records {
		summaries[i] = newRunSummary(&records[i])
	}

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// runDetail is the resource form of one run.
type runDetail struct {
	RunSummary
	DocumentsTotal   int             `json:"documents_total"`
	DocumentsScanned int             `json:"documents_scanned"`
	DocumentsSkipped int             `json:"documents_skipped"`
	ElapsedMS        int64           `json:"elapsed_ms"`
	Matches          []DocumentMatch `json:"matches"`
}

// handleRunResource returns one run with its matches.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.History.Get(ctx, runID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting run: %w", err)
	}

	detail := runDetail{
		RunSummary:       newRunSummary(record),
		DocumentsTotal:   record.DocumentsTotal,
		DocumentsScanned: record.DocumentsScanned,
		DocumentsSkipped: record.DocumentsSkipped,
		ElapsedMS:        record.Elapsed.Milliseconds(),
		Matches:          groupMatches(record.Matches),
	}

	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}
	return jsonResult(req.Params.URI, string(data)), nil
}

// groupMatches folds consecutive matches of one document together,
// converting page indices to one-based page numbers.
func groupMatches(matches []domain.PageMatch) []DocumentMatch {
	out := []DocumentMatch{}
	for _, m := range matches {
		if n := len(out); n > 0 && out[n-1].Document == m.DocumentPath {
			out[n-1].Pages = append(out[n-1].Pages, m.PageIndex+1)
			continue
		}
		out = append(out, DocumentMatch{Document: m.DocumentPath, Pages: []int{m.PageIndex + 1}})
	}
	return out
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractRunID extracts the run ID from a URI like pdfsift://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
