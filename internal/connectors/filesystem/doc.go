// Package filesystem collects candidate PDFs from a local directory tree.
//
// Loose files with a .pdf extension are returned in place. ZIP archives are
// opened and their .pdf entries extracted into a per-run scratch directory,
// one subdirectory per archive so that equal entry names never collide.
package filesystem
