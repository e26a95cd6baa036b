// Package cli implements the pdfsift command line with cobra.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by the commands. Set by SetServices or the bootstrap.
var (
	scanService     driving.ScanService
	watchService    driving.WatchService
	historyService  driving.HistoryService
	settingsService driving.SettingsService
)

// Services groups the driving ports the commands need.
type Services struct {
	Scan     driving.ScanService
	Watch    driving.WatchService
	History  driving.HistoryService
	Settings driving.SettingsService
}

// BootstrapOptions carries global flags needed to wire services.
type BootstrapOptions struct {
	ConfigDir string
	Verbose   bool
}

// BootstrapFunc builds the services once flags are parsed. The returned
// cleanup runs after the command finishes.
type BootstrapFunc func(opts BootstrapOptions) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "pdfsift",
	Short: "Find text in PDF collections",
	Long: `pdfsift scans a directory tree, including PDFs packed in ZIP archives,
for documents containing a piece of text.

Matches can be collected as a single PDF holding only the matching pages,
or as copies of every matching document in a timestamped results folder.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.pdfsift)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	scanService = s.Scan
	watchService = s.Watch
	historyService = s.History
	settingsService = s.Settings
}

// SetBootstrap registers the function that wires services after flag parsing.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.Execute()
}

// skipBootstrap marks commands that need no services.
const skipBootstrap = "skip-bootstrap"

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if _, skip := cmd.Annotations[skipBootstrap]; skip {
		return nil
	}
	if bootstrap == nil || scanService != nil {
		return nil
	}

	services, done, err := bootstrap(BootstrapOptions{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

var errNotConfigured = errors.New("service not configured")

func notConfigured(name string) error {
	return fmt.Errorf("%s %w", name, errNotConfigured)
}
