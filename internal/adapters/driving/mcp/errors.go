// Package mcp provides an MCP (Model Context Protocol) server adapter for pdfsift.
// It lets AI assistants run scans over local PDF collections and read past runs.
package mcp

import "errors"

// ErrMissingScanService is returned when the scan service is not provided.
var ErrMissingScanService = errors.New("mcp: scan service is required")
