package driven

import "context"

// DocumentCopier copies whole documents into the results folder.
type DocumentCopier interface {
	// Copy writes the contents of src to dst. dst must not exist.
	Copy(ctx context.Context, src, dst string) error
}
