// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// RunList displays recorded scan runs in a navigable list.
type RunList struct {
	runs     []domain.ScanRecord
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewRunList creates a new run list component.
func NewRunList(s *styles.Styles) *RunList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RunList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the run list.
func (r *RunList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RunList) Update(msg tea.Msg) (*RunList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		}
	}
	return r, nil
}

// View renders the run list.
func (r *RunList) View() string {
	if len(r.runs) == 0 {
		return r.styles.Muted.Render("No runs recorded")
	}

	lines := make([]string, 0, len(r.runs)+2)
	lines = append(lines, r.styles.Subtitle.Render(fmt.Sprintf("Runs (%d)", len(r.runs))), "")

	// One line per run.
	visibleCount := r.height - 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.runs) {
		end = len(r.runs)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRun(i, &r.runs[i]))
	}

	return strings.Join(lines, "\n")
}

// renderRun formats a single run as one line.
func (r *RunList) renderRun(index int, run *domain.ScanRecord) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	query := run.Query
	maxQueryLen := r.width - 50
	if maxQueryLen < 10 {
		maxQueryLen = 10
	}
	if len(query) > maxQueryLen {
		query = query[:maxQueryLen-3] + "..."
	}

	line := fmt.Sprintf("%s%s  %-9s  %-*s  %d match(es)",
		indicator,
		run.StartedAt.Local().Format("2006-01-02 15:04"),
		run.State,
		maxQueryLen, query,
		run.TotalMatches,
	)

	if index == r.selected {
		return r.styles.Selected.Render(line)
	}
	if run.State == domain.RunStateFailed {
		return r.styles.Error.Render(line)
	}
	return r.styles.Normal.Render(line)
}

// SetRuns updates the run list.
func (r *RunList) SetRuns(runs []domain.ScanRecord) {
	r.runs = runs
	r.selected = 0
}

// Runs returns the current runs.
func (r *RunList) Runs() []domain.ScanRecord {
	return r.runs
}

// Selected returns the index of the selected run.
func (r *RunList) Selected() int {
	return r.selected
}

// SetSelected sets the selected index.
func (r *RunList) SetSelected(index int) {
	if index >= 0 && index < len(r.runs) {
		r.selected = index
	}
}

// SelectedRun returns the currently selected run, or nil if none.
func (r *RunList) SelectedRun() *domain.ScanRecord {
	if len(r.runs) == 0 || r.selected < 0 || r.selected >= len(r.runs) {
		return nil
	}
	return &r.runs[r.selected]
}

// MoveUp moves selection up.
func (r *RunList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RunList) MoveDown() {
	if r.selected < len(r.runs)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RunList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Width returns the current width.
func (r *RunList) Width() int {
	return r.width
}

// Height returns the current height.
func (r *RunList) Height() int {
	return r.height
}

// Count returns the number of runs.
func (r *RunList) Count() int {
	return len(r.runs)
}

// IsEmpty returns whether the list is empty.
func (r *RunList) IsEmpty() bool {
	return len(r.runs) == 0
}
