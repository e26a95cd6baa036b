package domain

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{input: "pages", expected: ModePagesOnly},
		{input: "PAGES-ONLY", expected: ModePagesOnly},
		{input: " documents ", expected: ModeWholeDocuments},
		{input: "whole-documents", expected: ModeWholeDocuments},
		{input: "docs", expected: ModeWholeDocuments},
		{input: "", wantErr: true},
		{input: "chapters", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestMode_Description(t *testing.T) {
	assert.Contains(t, ModePagesOnly.Description(), "pages")
	assert.Contains(t, ModeWholeDocuments.Description(), "documents")
	assert.Equal(t, "Unknown", Mode("x").Description())
}

func TestAllModes(t *testing.T) {
	modes := AllModes()
	assert.Equal(t, []Mode{ModePagesOnly, ModeWholeDocuments}, modes)
	for _, m := range modes {
		assert.True(t, m.IsValid())
	}
}

func TestScanRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ScanRequest
		wantErr bool
	}{
		{
			name: "valid request",
			req:  ScanRequest{RootDirectory: "/data", Query: "invoice", Mode: ModePagesOnly},
		},
		{
			name:    "missing root",
			req:     ScanRequest{Query: "invoice", Mode: ModePagesOnly},
			wantErr: true,
		},
		{
			name:    "empty query",
			req:     ScanRequest{RootDirectory: "/data", Mode: ModePagesOnly},
			wantErr: true,
		},
		{
			name: "whitespace query",
			req:  ScanRequest{RootDirectory: "/data", Query: "   ", Mode: ModePagesOnly},
		},
		{
			name: "explicit extractor",
			req:  ScanRequest{RootDirectory: "/data", Query: "x", Mode: ModeWholeDocuments, Extractor: ExtractorLedongthuc},
		},
		{
			name:    "unknown extractor",
			req:     ScanRequest{RootDirectory: "/data", Query: "x", Mode: ModePagesOnly, Extractor: "poppler"},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			req:     ScanRequest{RootDirectory: "/data", Query: "x", Mode: Mode("chapters")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCandidateFile_Names(t *testing.T) {
	loose := CandidateFile{Path: filepath.Join("root", "a.pdf")}
	assert.False(t, loose.FromArchive())
	assert.Equal(t, loose.Path, loose.DisplayName())
	assert.Equal(t, "a.pdf", loose.BaseName())

	member := CandidateFile{
		Path:        filepath.Join("scratch", "0001", "docs", "c.pdf"),
		ArchivePath: filepath.Join("root", "b.zip"),
		EntryName:   "docs/c.pdf",
	}
	assert.True(t, member.FromArchive())
	assert.Equal(t, filepath.Join("root", "b.zip")+"!/docs/c.pdf", member.DisplayName())
	assert.Equal(t, "c.pdf", member.BaseName())
}

func TestRunState_IsTerminal(t *testing.T) {
	assert.False(t, RunStateIdle.IsTerminal())
	assert.False(t, RunStateRunning.IsTerminal())
	assert.True(t, RunStateCompleted.IsTerminal())
	assert.True(t, RunStateCancelled.IsTerminal())
	assert.True(t, RunStateFailed.IsTerminal())
}

func TestScanResult_ProducedOutput(t *testing.T) {
	var nilResult *ScanResult
	assert.False(t, nilResult.ProducedOutput())
	assert.False(t, (&ScanResult{}).ProducedOutput())
	assert.True(t, (&ScanResult{OutputPaths: []string{"out.pdf"}}).ProducedOutput())
}
