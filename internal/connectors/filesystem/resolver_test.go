package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "file:// URI is converted to local path",
			uri:  "file:///Users/test/documents",
			want: "/Users/test/documents",
		},
		{
			name: "file:// URI with spaces",
			uri:  "file:///Users/test/my documents",
			want: "/Users/test/my documents",
		},
		{
			name: "percent-encoded file:// URI",
			uri:  "file:///Users/test/my%20documents",
			want: "/Users/test/my documents",
		},
		{
			name: "localhost host is dropped",
			uri:  "file://localhost/srv/pdfs",
			want: "/srv/pdfs",
		},
		{
			name: "bare path passes through unchanged",
			uri:  "/Users/test/documents",
			want: "/Users/test/documents",
		},
		{
			name: "relative path passes through unchanged",
			uri:  "relative/path",
			want: "relative/path",
		},
		{
			name: "empty string",
			uri:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.uri))
		})
	}
}
