// Package history provides the run history view for the TUI.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// ErrHistoryDisabled is reported when no history service is wired.
var ErrHistoryDisabled = errors.New("run history is disabled")

// DefaultLimit is the number of runs loaded.
const DefaultLimit = 50

// maxDetailMatches bounds the matches listed in the detail pane.
const maxDetailMatches = 20

// View lists past runs and shows the details of one.
type View struct {
	styles         *styles.Styles
	keymap         *keymap.KeyMap
	list           *list.RunList
	historyService driving.HistoryService
	ctx            context.Context

	detail  *domain.ScanRecord
	loading bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new history view. historyService may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, historyService driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:         s,
		keymap:         km,
		list:           list.NewRunList(s),
		historyService: historyService,
		ctx:            context.Background(),
		width:          80,
		height:         24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the runs.
func (v *View) Init() tea.Cmd {
	v.detail = nil
	v.loading = true
	return v.loadRuns()
}

// loadRuns returns a command that loads runs from the service.
func (v *View) loadRuns() tea.Cmd {
	svc := v.historyService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.RunsLoaded{Err: ErrHistoryDisabled}
		}
		records, err := svc.List(ctx, DefaultLimit)
		return messages.RunsLoaded{Records: records, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.RunsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetRuns(msg.Records)
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.detail != nil {
		if keymap.Matches(key, v.keymap.Back) {
			v.detail = nil
		}
		return v, nil
	}

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Refresh):
		v.loading = true
		return v, v.loadRuns()
	case keymap.Matches(key, v.keymap.Select):
		v.detail = v.list.SelectedRun()
		return v, nil
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	}
	return v, nil
}

// View renders the history view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("History"), ""}

	switch {
	case v.loading:
		sections = append(sections, v.styles.Muted.Render("Loading runs..."))
	case v.err != nil:
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()))
	case v.detail != nil:
		sections = append(sections, v.renderDetail(v.detail))
	default:
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.styles.Help.Render(v.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) helpLine() string {
	if v.detail != nil {
		return "[esc] Back to list"
	}
	return "[j/k] Navigate  [enter] Details  [r] Refresh  [esc] Menu"
}

// renderDetail renders one run.
func (v *View) renderDetail(r *domain.ScanRecord) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(v.styles.Label.Render(label))
		b.WriteString(v.styles.Normal.Render(value))
		b.WriteString("\n")
	}

	row("Run", r.ID)
	row("Started", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	row("Folder", r.RootDirectory)
	row("Text", r.Query)
	row("Mode", r.Mode.Description())
	row("State", string(r.State))
	row("Documents", fmt.Sprintf("%d scanned of %d, %d skipped", r.DocumentsScanned, r.DocumentsTotal, r.DocumentsSkipped))
	row("Matches", fmt.Sprintf("%d page(s)", r.TotalMatches))
	row("Elapsed", r.Elapsed.String())
	if r.Error != "" {
		b.WriteString(v.styles.Error.Render("Error: " + r.Error))
		b.WriteString("\n")
	}

	for _, p := range r.OutputPaths {
		row("Output", p)
	}

	if len(r.Matches) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Matching pages"))
		b.WriteString("\n")
		for i, m := range r.Matches {
			if i == maxDetailMatches {
				b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  ... %d more", len(r.Matches)-maxDetailMatches)))
				b.WriteString("\n")
				break
			}
			b.WriteString(fmt.Sprintf("  %s  page %d\n", m.DocumentPath, m.PageIndex+1))
		}
	}

	return v.styles.Border.Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.list.SetDimensions(width, height-6)
}

// Detail returns the run shown in the detail pane, or nil.
func (v *View) Detail() *domain.ScanRecord {
	return v.detail
}

// Runs returns the loaded runs.
func (v *View) Runs() []domain.ScanRecord {
	return v.list.Runs()
}

// Err returns the load error, if any.
func (v *View) Err() error {
	return v.err
}

// Loading reports whether runs are being loaded.
func (v *View) Loading() bool {
	return v.loading
}
