// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Collector: Walks a root directory and yields candidate PDFs
//   - ExtractorRegistry: Selects a PageTextExtractor backend
//   - PageTextExtractor: Opens PDFs and extracts plain text per page
//   - PageAssembler: Builds the PagesOnly output PDF page by page
//   - DocumentCopier: Copies whole documents for WholeDocuments mode
//   - ScratchProvider: Creates and removes run-scoped scratch directories
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - HistoryStore: Run history persistence. Without it, runs are not recorded.
//   - ChangeWatcher: Filesystem notifications. Only needed by watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
