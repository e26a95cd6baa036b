// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// ScanService owns the scan lifecycle: validation, collection,
// matching and output. HistoryService, SettingsService and WatchService
// are thin layers over their driven ports.
package services
