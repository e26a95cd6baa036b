package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure scan defaults, output placement, history and watch options.

Use subcommands to read or change single keys, or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save it to the configuration file.

Keys:
  scan.mode               pages | documents
  scan.extractor          tabula | ledongthuc
  scan.document_timeout   per-document limit, e.g. 30s (0 disables)
  scan.skip_hidden        true | false
  output.directory        results directory (empty = <root>/results)
  history.enabled         true | false
  history.keep            number of runs kept
  watch.cooldown          minimum delay between rescans, e.g. 5s`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure scan defaults step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Scan]")
	cmd.Printf("  Mode: %s\n", settings.Scan.Mode.Description())
	cmd.Printf("  Extractor: %s\n", settings.Scan.Extractor.Description())
	if settings.Scan.DocumentTimeout > 0 {
		cmd.Printf("  Document timeout: %s\n", settings.Scan.DocumentTimeout)
	} else {
		cmd.Printf("  Document timeout: none\n")
	}
	cmd.Printf("  Skip hidden files: %s\n", yesNo(settings.Scan.SkipHidden))
	cmd.Println()

	cmd.Println("[Output]")
	if settings.Output.Directory != "" {
		cmd.Printf("  Directory: %s\n", settings.Output.Directory)
	} else {
		cmd.Printf("  Directory: <root>/%s\n", domain.DefaultResultsDirName)
	}
	cmd.Println()

	cmd.Println("[History]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.History.Enabled))
	cmd.Printf("  Keep: %d run(s)\n", settings.History.Keep)
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Cooldown: %s\n", settings.Watch.Cooldown)

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	value, err := settingsService.GetValue(args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(settingsService.Keys(), ", "))
		}
		return err
	}
	cmd.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("unknown setting %q (known: %s)", args[0], strings.Join(settingsService.Keys(), ", "))
		}
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	value, err := settingsService.GetValue(args[0])
	if err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], value)
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("pdfsift Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Output mode
	cmd.Println("Step 1: Select Default Output Mode")
	cmd.Println("----------------------------------")
	modes := domain.AllModes()
	current := 1
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
		if mode == settings.Scan.Mode {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Scan.Mode = modes[parseChoice(readLine(reader), len(modes), current)-1]
	cmd.Println()

	// Step 2: Extractor
	cmd.Println("Step 2: Select Text Extractor")
	cmd.Println("-----------------------------")
	backends := domain.AllExtractorBackends()
	current = 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
		if b == settings.Scan.Extractor {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Scan.Extractor = backends[parseChoice(readLine(reader), len(backends), current)-1]
	cmd.Println()

	// Step 3: Output directory
	cmd.Println("Step 3: Output Directory")
	cmd.Println("------------------------")
	cmd.Printf("Leave empty for <root>/%s, '-' to clear.\n", domain.DefaultResultsDirName)
	cmd.Printf("Directory [%s]: ", settings.Output.Directory)
	switch dir := readLine(reader); dir {
	case "":
	case "-":
		settings.Output.Directory = ""
	default:
		settings.Output.Directory = dir
	}
	cmd.Println()

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	cmd.Printf("Mode: %s\n", settings.Scan.Mode.Description())
	cmd.Printf("Extractor: %s\n", settings.Scan.Extractor.Description())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

