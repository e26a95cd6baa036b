package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui/styles"
)

func TestNewField(t *testing.T) {
	f := NewField(styles.DefaultStyles(), "Folder", "/path/to/pdfs")

	require.NotNil(t, f)
	assert.Equal(t, "Folder", f.Label())
	assert.Equal(t, "", f.Value())
	assert.False(t, f.Focused())
}

func TestNewField_NilStyles(t *testing.T) {
	f := NewField(nil, "Query", "")

	require.NotNil(t, f)
	assert.NotNil(t, f.styles)
}

func TestField_Init(t *testing.T) {
	f := NewField(nil, "Query", "")

	// Blink command should be returned
	assert.NotNil(t, f.Init())
}

func TestField_UpdateWhenFocused(t *testing.T) {
	f := NewField(nil, "Query", "")
	f.Focus()

	updated, _ := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, f, updated)
	assert.Equal(t, "a", f.Value())
}

func TestField_UpdateIgnoredWhenBlurred(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	assert.Equal(t, "", f.Value())
}

func TestField_View(t *testing.T) {
	f := NewField(nil, "Folder", "")
	f.SetValue("/data")

	view := f.View()
	assert.Contains(t, view, "Folder")
	assert.Contains(t, view, "/data")
}

func TestField_SetValue(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.SetValue("invoice")
	assert.Equal(t, "invoice", f.Value())

	f.Reset()
	assert.Equal(t, "", f.Value())
}

func TestField_FocusBlur(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.Focus()
	assert.True(t, f.Focused())

	f.Blur()
	assert.False(t, f.Focused())
}

func TestField_SetWidth(t *testing.T) {
	f := NewField(nil, "Query", "")

	f.SetWidth(100)
	assert.Equal(t, 100, f.Width())
	assert.Equal(t, 100-labelWidth-4, f.textinput.Width)

	f.SetWidth(10)
	assert.Equal(t, minWidth, f.textinput.Width)
}
