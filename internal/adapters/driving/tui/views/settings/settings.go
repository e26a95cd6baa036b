// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// ErrNoSettingsService indicates that no settings service was provided.
var ErrNoSettingsService = errors.New("settings service not available")

// Entry is one setting and its current value.
type Entry struct {
	Key   string
	Value string
}

// valuesLoadedMsg extends messages.SettingsLoaded with rendered values.
type valuesLoadedMsg struct {
	messages.SettingsLoaded
	Entries []Entry
}

// View lists settings and edits one at a time.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService

	entries  []Entry
	selected int
	editing  bool
	editor   textinput.Model
	err      error
	notice   string

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	editor := textinput.New()
	editor.CharLimit = 1024
	editor.Width = 40

	return &View{
		styles:          s,
		keymap:          km,
		settingsService: settingsService,
		editor:          editor,
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// loadSettings returns a command that loads every setting as a string.
func (v *View) loadSettings() tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return valuesLoadedMsg{SettingsLoaded: messages.SettingsLoaded{Err: ErrNoSettingsService}}
		}
		settings, err := svc.Get()
		if err != nil {
			return valuesLoadedMsg{SettingsLoaded: messages.SettingsLoaded{Err: err}}
		}

		keys := svc.Keys()
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			value, err := svc.GetValue(k)
			if err != nil {
				return valuesLoadedMsg{SettingsLoaded: messages.SettingsLoaded{Err: err}}
			}
			entries = append(entries, Entry{Key: k, Value: value})
		}
		return valuesLoadedMsg{
			SettingsLoaded: messages.SettingsLoaded{Settings: settings},
			Entries:        entries,
		}
	}
}

// saveValue returns a command that persists one setting.
func (v *View) saveValue(key, value string) tea.Cmd {
	svc := v.settingsService
	return func() tea.Msg {
		if svc == nil {
			return messages.SettingsSaved{Err: ErrNoSettingsService}
		}
		if err := svc.SetValue(key, value); err != nil {
			return messages.SettingsSaved{Err: fmt.Errorf("failed to set %s: %w", key, err)}
		}
		return messages.SettingsSaved{}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case valuesLoadedMsg:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.entries = msg.Entries
		if v.selected >= len(v.entries) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			v.notice = ""
			return v, nil
		}
		v.err = nil
		v.notice = "Saved"
		return v, v.loadSettings()

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	if v.editing {
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}
	return v, nil
}

// handleKeyMsg handles key presses for the list and the editor.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.editing {
		switch {
		case keymap.Matches(key, v.keymap.Back):
			v.editing = false
			v.editor.Blur()
			return v, nil
		case keymap.Matches(key, v.keymap.Select):
			v.editing = false
			v.editor.Blur()
			return v, v.saveValue(v.entries[v.selected].Key, strings.TrimSpace(v.editor.Value()))
		}
		var cmd tea.Cmd
		v.editor, cmd = v.editor.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Select):
		if len(v.entries) == 0 {
			return v, nil
		}
		v.editing = true
		v.notice = ""
		v.editor.SetValue(v.entries[v.selected].Value)
		v.editor.CursorEnd()
		return v, v.editor.Focus()
	}
	return v, nil
}

// View renders the settings view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Settings"), ""}

	keyWidth := 0
	for _, e := range v.entries {
		if len(e.Key) > keyWidth {
			keyWidth = len(e.Key)
		}
	}

	for i, e := range v.entries {
		line := fmt.Sprintf("%-*s  ", keyWidth, e.Key)
		value := e.Value
		if value == "" {
			value = "(default)"
		}
		switch {
		case i == v.selected && v.editing:
			sections = append(sections, "> "+v.styles.Selected.Render(line)+v.editor.View())
		case i == v.selected:
			sections = append(sections, "> "+v.styles.Selected.Render(line)+v.styles.Normal.Render(value))
		default:
			sections = append(sections, "  "+v.styles.Normal.Render(line)+v.styles.Muted.Render(value))
		}
	}

	if v.err != nil {
		sections = append(sections, "", v.styles.Error.Render("Error: "+v.err.Error()))
	} else if v.notice != "" {
		sections = append(sections, "", v.styles.Success.Render(v.notice))
	}

	sections = append(sections, "", v.styles.Help.Render(v.helpLine()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) helpLine() string {
	if v.editing {
		return "[enter] Save  [esc] Cancel"
	}
	return "[j/k] Navigate  [enter] Edit  [esc] Menu"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset returns the view to the list.
func (v *View) Reset() {
	v.editing = false
	v.editor.Blur()
	v.editor.Reset()
	v.err = nil
	v.notice = ""
}

// Entries returns the loaded settings.
func (v *View) Entries() []Entry {
	return v.entries
}

// Selected returns the index of the selected setting.
func (v *View) Selected() int {
	return v.selected
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
