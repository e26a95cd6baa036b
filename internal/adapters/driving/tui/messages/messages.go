// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewScan is the scan form with progress and log.
	ViewScan
	// ViewHistory lists past runs.
	ViewHistory
	// ViewSettings is the settings configuration view.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewScan:
		return "scan"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ScanStarted carries the run started by the scan form.
type ScanStarted struct {
	Run driving.Run
	Err error
}

// ScanEventReceived carries one event of the running scan.
type ScanEventReceived struct {
	RunID string
	Event domain.ScanEvent
}

// ScanFinished signals the run ended. Result is nil when the run was
// rejected before it started.
type ScanFinished struct {
	RunID  string
	Result *domain.ScanResult
	Err    error
}

// RunsLoaded carries past runs from the history service.
type RunsLoaded struct {
	Records []domain.ScanRecord
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
