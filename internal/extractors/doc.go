// Package extractors provides the page text extraction backends and the
// registry the scan service resolves them from.
//
// Backends are registered at startup; the active one is chosen per scan
// through the scan.extractor setting.
package extractors
