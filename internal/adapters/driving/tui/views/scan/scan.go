// Package scan provides the scan form view for the TUI: folder, query and
// output fields, a mode toggle, a progress bar and a scrolling log.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// ErrNoScanService indicates that no scan service was provided.
var ErrNoScanService = errors.New("scan service is required")

// Form field indices.
const (
	fieldFolder = iota
	fieldQuery
	fieldOutput
	fieldCount
)

// maxLogLines bounds the log kept in memory.
const maxLogLines = 500

// View is the scan form.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	fields    []*input.Field
	focus     int
	mode      domain.Mode
	progress  progress.Model
	log       viewport.Model
	lines     []string
	statusbar *status.Bar

	scanService     driving.ScanService
	settingsService driving.SettingsService
	ctx             context.Context

	run       driving.Run
	runID     string
	processed int
	total     int
	result    *domain.ScanResult
	err       error

	width  int
	height int
	ready  bool
}

// NewView creates a new scan view. settingsService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	scanService driving.ScanService,
	settingsService driving.SettingsService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	fields := make([]*input.Field, fieldCount)
	fields[fieldFolder] = input.NewField(s, "Folder", "/path/to/pdfs")
	fields[fieldQuery] = input.NewField(s, "Text", "text to find")
	fields[fieldOutput] = input.NewField(s, "Output", "default: <folder>/results")

	return &View{
		styles:          s,
		keymap:          km,
		fields:          fields,
		mode:            domain.ModePagesOnly,
		progress:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		log:             viewport.New(80, 8),
		statusbar:       status.NewBar(s, km),
		scanService:     scanService,
		settingsService: settingsService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init focuses the first field and loads the default mode from settings.
func (v *View) Init() tea.Cmd {
	cmds := []tea.Cmd{v.focusField(v.focus)}
	if v.settingsService != nil {
		cmds = append(cmds, v.loadSettings())
	}
	return tea.Batch(cmds...)
}

// Update handles messages for the scan view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SettingsLoaded:
		if msg.Err == nil && msg.Settings != nil && msg.Settings.Scan.Mode.IsValid() && !v.Running() {
			v.mode = msg.Settings.Scan.Mode
		}
		return v, nil

	case messages.ScanStarted:
		return v.handleScanStarted(msg)

	case messages.ScanEventReceived:
		return v.handleScanEvent(msg)

	case messages.ScanFinished:
		v.handleScanFinished(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	// Cursor blink and friends go to the focused field.
	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.Running() {
		switch {
		case keymap.Matches(key, v.keymap.Cancel):
			v.run.Cancel()
			v.statusbar.SetState(status.StateCancelling)
		case keymap.Matches(key, v.keymap.Up):
			v.log.LineUp(1)
		case keymap.Matches(key, v.keymap.Down):
			v.log.LineDown(1)
		}
		return v, nil
	}

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Start):
		return v, v.start()

	case keymap.Matches(key, v.keymap.ToggleMode):
		v.toggleMode()
		return v, nil

	case keymap.Matches(key, v.keymap.NextField):
		return v, v.focusField((v.focus + 1) % fieldCount)

	case keymap.Matches(key, v.keymap.PrevField):
		return v, v.focusField((v.focus + fieldCount - 1) % fieldCount)

	case msg.Type == tea.KeyEnter:
		if v.focus == fieldCount-1 {
			return v, v.start()
		}
		return v, v.focusField(v.focus + 1)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

// focusField moves focus to field i.
func (v *View) focusField(i int) tea.Cmd {
	for _, f := range v.fields {
		f.Blur()
	}
	v.focus = i
	return v.fields[i].Focus()
}

// toggleMode cycles through the output modes.
func (v *View) toggleMode() {
	modes := domain.AllModes()
	for i, m := range modes {
		if m == v.mode {
			v.mode = modes[(i+1)%len(modes)]
			return
		}
	}
	v.mode = modes[0]
}

// Request builds the scan request from the form.
func (v *View) Request() domain.ScanRequest {
	return domain.ScanRequest{
		RootDirectory:   strings.TrimSpace(v.fields[fieldFolder].Value()),
		Query:           v.fields[fieldQuery].Value(),
		Mode:            v.mode,
		OutputDirectory: strings.TrimSpace(v.fields[fieldOutput].Value()),
	}
}

// start validates the form and asks the service to start a run.
func (v *View) start() tea.Cmd {
	req := v.Request()
	if req.RootDirectory == "" {
		v.setError(fmt.Errorf("%w: choose a folder to scan", domain.ErrInvalidInput))
		return v.focusField(fieldFolder)
	}
	if req.Query == "" {
		v.setError(fmt.Errorf("%w: enter the text to find", domain.ErrInvalidInput))
		return v.focusField(fieldQuery)
	}

	v.err = nil
	v.statusbar.SetState(status.StateScanning)
	v.statusbar.SetMessage("")
	v.statusbar.SetProgress(0, 0)

	svc := v.scanService
	ctx := v.ctx
	return func() tea.Msg {
		if svc == nil {
			return messages.ScanStarted{Err: ErrNoScanService}
		}
		run, err := svc.Start(ctx, req)
		return messages.ScanStarted{Run: run, Err: err}
	}
}

// handleScanStarted begins listening to a freshly started run.
func (v *View) handleScanStarted(msg messages.ScanStarted) (*View, tea.Cmd) {
	if msg.Err != nil || msg.Run == nil {
		err := msg.Err
		if err == nil {
			err = ErrNoScanService
		}
		v.setError(err)
		return v, nil
	}

	v.run = msg.Run
	v.runID = msg.Run.ID()
	v.processed, v.total = 0, 0
	v.result = nil
	v.err = nil
	v.lines = nil
	v.log.SetContent("")
	v.statusbar.SetState(status.StateScanning)

	for _, f := range v.fields {
		f.Blur()
	}
	return v, waitForEvent(v.run)
}

// handleScanEvent applies one run event and waits for the next.
func (v *View) handleScanEvent(msg messages.ScanEventReceived) (*View, tea.Cmd) {
	if v.run == nil || msg.RunID != v.runID {
		return v, nil
	}

	switch msg.Event.Kind {
	case domain.EventProgress:
		v.processed = msg.Event.Processed
		v.total = msg.Event.Total
		v.statusbar.SetProgress(v.processed, v.total)
	case domain.EventLog:
		line := msg.Event.Message
		if msg.Event.Path != "" {
			line = msg.Event.Path + ": " + line
		}
		v.appendLog(v.styles.Level(msg.Event.Level).Render(line))
	case domain.EventFinished:
		// The result is read from Wait once the channel closes.
	}

	return v, waitForEvent(v.run)
}

// handleScanFinished records the outcome of the run.
func (v *View) handleScanFinished(msg messages.ScanFinished) {
	if msg.RunID != v.runID {
		return
	}
	v.run = nil
	v.result = msg.Result

	if msg.Result == nil {
		if msg.Err != nil {
			v.setError(msg.Err)
		}
		return
	}

	r := msg.Result
	v.processed = r.DocumentsScanned
	v.total = r.DocumentsTotal
	v.statusbar.SetProgress(v.processed, v.total)
	v.statusbar.SetMatchCount(r.TotalMatches)

	switch r.State {
	case domain.RunStateCancelled:
		v.statusbar.SetState(status.StateDone)
		v.statusbar.SetMessage("Scan cancelled, no output written")
	case domain.RunStateFailed:
		err := msg.Err
		if err == nil {
			err = r.Err
		}
		v.setError(err)
	default:
		v.statusbar.SetState(status.StateDone)
		if r.TotalMatches == 0 {
			v.statusbar.SetMessage("No matches found")
		} else {
			v.statusbar.SetMessage(summary(r))
		}
		for _, p := range r.OutputPaths {
			v.appendLog(v.styles.Success.Render("Saved " + p))
		}
	}
}

// summary describes a completed run with matches.
func summary(r *domain.ScanResult) string {
	docs := 0
	if r.Matches != nil {
		docs = r.Matches.Len()
	}
	if r.Request.Mode == domain.ModeWholeDocuments {
		return fmt.Sprintf("%d matching page(s) in %d document(s), %d document(s) copied",
			r.TotalMatches, docs, r.FilesProduced)
	}
	return fmt.Sprintf("%d matching page(s) in %d document(s)", r.TotalMatches, docs)
}

// waitForEvent reads the next event of run. Once the event channel closes
// it reports the result of the run.
func waitForEvent(run driving.Run) tea.Cmd {
	id := run.ID()
	events := run.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			res, err := run.Wait()
			return messages.ScanFinished{RunID: id, Result: res, Err: err}
		}
		return messages.ScanEventReceived{RunID: id, Event: ev}
	}
}

// loadSettings fetches the configured defaults.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		settings, err := svc.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

func (v *View) appendLog(line string) {
	v.lines = append(v.lines, line)
	if len(v.lines) > maxLogLines {
		v.lines = v.lines[len(v.lines)-maxLogLines:]
	}
	v.log.SetContent(strings.Join(v.lines, "\n"))
	v.log.GotoBottom()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	if err != nil {
		v.statusbar.SetMessage(err.Error())
	}
}

// View renders the scan view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 12)
	sections = append(sections, v.styles.Title.Render("Scan"), "")

	for _, f := range v.fields {
		sections = append(sections, f.View())
	}

	modeLine := v.styles.Label.Render("Mode") + v.styles.Normal.Render(v.mode.Description())
	if !v.Running() {
		modeLine += "  " + v.styles.Muted.Render("(ctrl+t to change)")
	}
	sections = append(sections, modeLine, "")

	if v.Running() || v.result != nil {
		fraction := domain.ScanEvent{Processed: v.processed, Total: v.total}.Fraction()
		if v.Running() && v.total == 0 {
			fraction = 0
		}
		counts := v.styles.Muted.Render(fmt.Sprintf(" %d/%d", v.processed, v.total))
		sections = append(sections, v.progress.ViewAs(fraction)+counts, "")
	}

	if len(v.lines) > 0 {
		sections = append(sections, v.log.View(), "")
	}

	sections = append(sections, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	for _, f := range v.fields {
		f.SetWidth(width)
	}
	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}
	v.progress.Width = barWidth

	// Title, fields, mode, progress and status bar
	logHeight := height - 18
	if logHeight < 3 {
		logHeight = 3
	}
	v.log.Width = width
	v.log.Height = logHeight
	v.statusbar.SetWidth(width)
}

// Reset clears the form unless a run is in flight.
func (v *View) Reset() {
	if v.Running() {
		return
	}
	v.result = nil
	v.err = nil
	v.lines = nil
	v.log.SetContent("")
	v.processed, v.total = 0, 0
	v.statusbar.Clear()
	v.focusField(fieldFolder)
}

// Running reports whether a run is in flight.
func (v *View) Running() bool {
	return v.run != nil
}

// Mode returns the selected output mode.
func (v *View) Mode() domain.Mode {
	return v.mode
}

// Focus returns the index of the focused field.
func (v *View) Focus() int {
	return v.focus
}

// SetField sets the value of field i.
func (v *View) SetField(i int, value string) {
	if i >= 0 && i < len(v.fields) {
		v.fields[i].SetValue(value)
	}
}

// Result returns the result of the last finished run.
func (v *View) Result() *domain.ScanResult {
	return v.result
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// LogLines returns the rendered log lines.
func (v *View) LogLines() []string {
	return v.lines
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}
