// Package connectors provides the sources candidate documents are collected
// from. Each connector knows how to enumerate PDFs in one kind of location;
// the filesystem connector is the only one and covers local directories and
// the ZIP archives inside them.
package connectors
