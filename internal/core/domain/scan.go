package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TimestampLayout is the YYYYMMDD-HHMMSS layout used for result names.
const TimestampLayout = "20060102-150405"

// Mode selects what a scan produces for matching documents.
type Mode string

// Available output modes.
const (
	// ModePagesOnly assembles a single PDF holding only the matching pages.
	ModePagesOnly Mode = "pages"

	// ModeWholeDocuments copies every matching document into a results folder.
	ModeWholeDocuments Mode = "documents"
)

// IsValid returns true if the mode is recognised.
func (m Mode) IsValid() bool {
	switch m {
	case ModePagesOnly, ModeWholeDocuments:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m Mode) Description() string {
	switch m {
	case ModePagesOnly:
		return "Matching pages only (single PDF)"
	case ModeWholeDocuments:
		return "Whole documents (copied files)"
	default:
		return "Unknown"
	}
}

// AllModes returns all available modes.
func AllModes() []Mode {
	return []Mode{ModePagesOnly, ModeWholeDocuments}
}

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pages", "pages-only", "pagesonly", "page":
		return ModePagesOnly, nil
	case "documents", "whole-documents", "wholedocuments", "docs", "document":
		return ModeWholeDocuments, nil
	default:
		return "", fmt.Errorf("%w: mode %q", ErrUnsupportedType, s)
	}
}

// ScanRequest describes a single scan. It is passed by value and
// never modified once the scan starts.
type ScanRequest struct {
	// RootDirectory is the directory tree to scan.
	RootDirectory string

	// Query is the text to look for, compared case-insensitively.
	Query string

	// Mode selects the output produced for matches.
	Mode Mode

	// OutputDirectory receives the results. Empty means "use settings".
	OutputDirectory string

	// Extractor overrides the configured text extraction backend.
	Extractor ExtractorBackend
}

// Validate checks the fields that can be verified without touching the
// filesystem.
func (r ScanRequest) Validate() error {
	if strings.TrimSpace(r.RootDirectory) == "" {
		return fmt.Errorf("%w: root directory is required", ErrInvalidInput)
	}
	if r.Query == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if !r.Mode.IsValid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, r.Mode)
	}
	if r.Extractor != "" && !r.Extractor.IsValid() {
		return fmt.Errorf("%w: unknown extractor %q", ErrInvalidInput, r.Extractor)
	}
	return nil
}

// CandidateFile is a PDF eligible for text scanning. Path is always
// readable on disk; for archive members it points into the run's scratch
// directory.
type CandidateFile struct {
	// Path is the file to open.
	Path string

	// ArchivePath is the ZIP the file was extracted from, if any.
	ArchivePath string

	// EntryName is the slash-separated name inside ArchivePath.
	EntryName string
}

// FromArchive reports whether the file was extracted from a ZIP archive.
func (c CandidateFile) FromArchive() bool {
	return c.ArchivePath != ""
}

// DisplayName returns a name suitable for logs and reports.
func (c CandidateFile) DisplayName() string {
	if c.FromArchive() {
		return c.ArchivePath + "!/" + c.EntryName
	}
	return c.Path
}

// BaseName returns the file name used when the document is copied.
func (c CandidateFile) BaseName() string {
	if c.FromArchive() {
		return filepath.Base(filepath.FromSlash(c.EntryName))
	}
	return filepath.Base(c.Path)
}

// PageMatch is a single matching page. PageIndex is zero-based.
type PageMatch struct {
	DocumentPath string `json:"document_path"`
	PageIndex    int    `json:"page_index"`
}

// RunState is the lifecycle state of the scan service.
type RunState string

// Scan lifecycle states.
const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateCancelled RunState = "cancelled"
	RunStateFailed    RunState = "failed"
)

// IsTerminal returns true for states that end a run.
func (s RunState) IsTerminal() bool {
	return s == RunStateCompleted || s == RunStateCancelled || s == RunStateFailed
}

// String returns the string representation.
func (s RunState) String() string {
	return string(s)
}

// ScanResult is the terminal outcome of a run.
type ScanResult struct {
	// RunID uniquely identifies the run.
	RunID string

	// Request is the request that produced this result.
	Request ScanRequest

	// State is Completed, Cancelled or Failed.
	State RunState

	// DocumentsTotal is the number of candidates collected.
	DocumentsTotal int

	// DocumentsScanned is the number of candidates processed before the run ended.
	DocumentsScanned int

	// DocumentsSkipped counts candidates that could not be parsed.
	DocumentsSkipped int

	// TotalMatches is the number of matching pages.
	TotalMatches int

	// Matches holds matching pages per document, in scan order.
	Matches *DocumentMatchSet

	// FilesProduced is the number of PDFs written (PagesOnly) or
	// documents copied (WholeDocuments).
	FilesProduced int

	// PagesSkipped counts matched pages that could not be copied.
	PagesSkipped int

	// OutputPaths lists the produced output file or folder.
	OutputPaths []string

	// StartedAt is when the run began.
	StartedAt time.Time

	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// Err describes why a run failed.
	Err error
}

// ProducedOutput reports whether the run left anything on disk.
func (r *ScanResult) ProducedOutput() bool {
	return r != nil && len(r.OutputPaths) > 0
}
