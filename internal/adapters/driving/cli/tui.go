package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for pdfsift.

The TUI is a form for a single scan: choose a folder, the text to find,
the output mode and an optional output directory, then follow progress
and the per-file log while the scan runs. Past runs and settings can be
browsed from the menu.

Controls:
  tab, shift+tab - Move between fields
  ctrl+t         - Toggle output mode
  ctrl+s         - Start scan
  ctrl+x         - Cancel the running scan
  esc            - Back
  ctrl+c         - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp builds the TUI from the configured services.
func newTUIApp() (*tui.App, error) {
	if scanService == nil {
		return nil, notConfigured("scan service")
	}

	app, err := tui.NewApp(tui.NewPorts(scanService, historyService, settingsService))
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := newTUIApp()
	if err != nil {
		return err
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Stop a run still in flight.
	scanService.Cancel()
	return nil
}
