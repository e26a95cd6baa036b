package filesystem

import (
	"net/url"
	"strings"
)

// ResolvePath converts a root given as a file:// URI to a local path.
// Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	p := strings.TrimPrefix(uri, "file://")
	// file://localhost/x is the same as file:///x
	p = strings.TrimPrefix(p, "localhost")
	if unescaped, err := url.PathUnescape(p); err == nil {
		return unescaped
	}
	return p
}
