// Package filesystem provides local-disk adapters: the document copier used
// by WholeDocuments mode and the per-run scratch directory provider.
package filesystem
