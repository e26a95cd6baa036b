// Package domain defines the core business entities for pdfsift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ScanRequest: What to scan, what to look for and where to write results
//   - CandidateFile: A PDF eligible for text scanning
//   - DocumentMatchSet: Ordered matching pages per document
//   - ScanResult: The terminal outcome of a run
//   - ScanEvent: Progress and log events emitted while a run is in flight
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
