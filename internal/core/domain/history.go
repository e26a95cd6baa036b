package domain

import "time"

// ScanRecord is the persisted summary of a finished run.
type ScanRecord struct {
	// ID is the run ID.
	ID string

	// RootDirectory, Query, Mode and OutputDirectory echo the request.
	RootDirectory   string
	Query           string
	Mode            Mode
	OutputDirectory string

	// State is the terminal run state.
	State RunState

	// Error is the failure description for failed runs.
	Error string

	DocumentsTotal   int
	DocumentsScanned int
	DocumentsSkipped int
	TotalMatches     int
	FilesProduced    int

	// OutputPaths lists produced files or folders.
	OutputPaths []string

	// Matches is the flattened match list. Archive members are named
	// archive.zip!/entry.pdf since their extracted copies do not outlive the run.
	Matches []PageMatch

	StartedAt time.Time
	Elapsed   time.Duration
}

// NewScanRecord summarises a result for storage.
func NewScanRecord(r *ScanResult) ScanRecord {
	rec := ScanRecord{
		ID:               r.RunID,
		RootDirectory:    r.Request.RootDirectory,
		Query:            r.Request.Query,
		Mode:             r.Request.Mode,
		OutputDirectory:  r.Request.OutputDirectory,
		State:            r.State,
		DocumentsTotal:   r.DocumentsTotal,
		DocumentsScanned: r.DocumentsScanned,
		DocumentsSkipped: r.DocumentsSkipped,
		TotalMatches:     r.TotalMatches,
		FilesProduced:    r.FilesProduced,
		OutputPaths:      append([]string(nil), r.OutputPaths...),
		Matches:          recordMatches(r.Matches),
		StartedAt:        r.StartedAt,
		Elapsed:          r.Elapsed,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

func recordMatches(set *DocumentMatchSet) []PageMatch {
	var out []PageMatch
	for _, d := range set.Documents() {
		for _, p := range d.Pages {
			out = append(out, PageMatch{DocumentPath: d.Document.DisplayName(), PageIndex: p})
		}
	}
	return out
}
