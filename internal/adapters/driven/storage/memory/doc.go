// Package memory provides in-memory implementations of driven ports.
// They back tests, and the CLI falls back to them when the on-disk
// history database cannot be opened.
package memory
