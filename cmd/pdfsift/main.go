// Command pdfsift finds text in PDF collections.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/assembler/pdfcpu"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/filesystem"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/watcher"
	"github.com/custodia-labs/pdfsift/internal/adapters/driving/cli"
	collector "github.com/custodia-labs/pdfsift/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/services"
	"github.com/custodia-labs/pdfsift/internal/extractors"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// version is set via -ldflags at release time.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the driven adapters into the core services.
func bootstrap(opts cli.BootstrapOptions) (*cli.Services, func(), error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}

	// History falls back to memory when the database cannot be opened.
	var history driven.HistoryStore
	cleanup := func() {}
	dataDir := ""
	if opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		logger.Warn("history database unavailable, runs are kept in memory: %v", err)
		history = memory.NewHistoryStore()
	} else {
		history = store.HistoryStore()
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing history database: %v", err)
			}
		}
	}

	scanService := services.NewScanService(
		collector.NewCollector(),
		extractors.DefaultRegistry(),
		pdfcpu.New(),
		filesystem.NewCopier(),
		filesystem.NewScratch(""),
		history,
		settingsService,
	)

	watchService := services.NewWatchService(scanService, watcher.New(settings.Scan.SkipHidden), settingsService)

	return &cli.Services{
		Scan:     scanService,
		Watch:    watchService,
		History:  services.NewHistoryService(history),
		Settings: settingsService,
	}, cleanup, nil
}
