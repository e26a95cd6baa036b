package domain

import "time"

const unknownDescription = "Unknown"

// ExtractorBackend names a page text extraction implementation.
type ExtractorBackend string

// Available extractor backends.
const (
	// ExtractorTabula uses the tabula layout-aware PDF reader.
	ExtractorTabula ExtractorBackend = "tabula"

	// ExtractorLedongthuc uses the lightweight ledongthuc/pdf reader.
	ExtractorLedongthuc ExtractorBackend = "ledongthuc"
)

// IsValid returns true if the backend is recognised.
func (b ExtractorBackend) IsValid() bool {
	switch b {
	case ExtractorTabula, ExtractorLedongthuc:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b ExtractorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b ExtractorBackend) Description() string {
	switch b {
	case ExtractorTabula:
		return "Tabula (layout-aware, handles multi-column pages)"
	case ExtractorLedongthuc:
		return "ledongthuc/pdf (fast, plain text)"
	default:
		return unknownDescription
	}
}

// AllExtractorBackends returns all available backends.
func AllExtractorBackends() []ExtractorBackend {
	return []ExtractorBackend{ExtractorTabula, ExtractorLedongthuc}
}

// ScanSettings holds scan behaviour configuration.
type ScanSettings struct {
	// Mode is the default output mode when a request leaves it unset.
	Mode Mode

	// Extractor selects the page text extraction backend.
	Extractor ExtractorBackend

	// DocumentTimeout bounds the time spent on one document. Zero disables it.
	DocumentTimeout time.Duration

	// SkipHidden excludes dot-files and dot-directories from traversal.
	SkipHidden bool
}

// OutputSettings holds result placement configuration.
type OutputSettings struct {
	// Directory receives results. Empty means "<root>/results".
	Directory string
}

// HistorySettings holds run history configuration.
type HistorySettings struct {
	// Enabled records every finished run.
	Enabled bool

	// Keep is the number of runs retained.
	Keep int
}

// WatchSettings holds watch mode configuration.
type WatchSettings struct {
	// Cooldown is the minimum delay between two rescans.
	Cooldown time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	Scan    ScanSettings
	Output  OutputSettings
	History HistorySettings
	Watch   WatchSettings
}

// DefaultResultsDirName is the results folder created under the root
// directory when no output directory is configured.
const DefaultResultsDirName = "results"

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Scan: ScanSettings{
			Mode:            ModePagesOnly,
			Extractor:       ExtractorTabula,
			DocumentTimeout: 0,
			SkipHidden:      false,
		},
		Output: OutputSettings{},
		History: HistorySettings{
			Enabled: true,
			Keep:    100,
		},
		Watch: WatchSettings{
			Cooldown: 5 * time.Second,
		},
	}
}
