package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	// A scan request failing validation is rejected before any work begins.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermissionDenied indicates the output directory cannot be written.
	// Fatal for the run: nothing is produced.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedType indicates an unknown extractor backend or mode.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrScanInProgress indicates a scan is already running.
	ErrScanInProgress = errors.New("scan in progress")

	// ErrCancelled indicates the run was cancelled before completion.
	ErrCancelled = errors.New("scan cancelled")

	// Per-file errors. These never abort a run: the offending file
	// (or page) is logged and skipped.

	// ErrArchiveRead indicates a ZIP archive or one of its entries could not be read.
	ErrArchiveRead = errors.New("archive read failed")

	// ErrDocumentParse indicates a PDF could not be opened or parsed.
	ErrDocumentParse = errors.New("document parse failed")

	// ErrPageExtract indicates text extraction failed for a single page.
	ErrPageExtract = errors.New("page text extraction failed")

	// ErrPageCopy indicates a matched page could not be copied into the output PDF.
	ErrPageCopy = errors.New("page copy failed")

	// ErrCopy indicates a matching document could not be copied to the results folder.
	ErrCopy = errors.New("document copy failed")

	// ErrWrite indicates an output file could not be written.
	ErrWrite = errors.New("write failed")
)
