package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure Copier implements the interface.
var _ driven.DocumentCopier = (*Copier)(nil)

// Copier copies files byte for byte.
type Copier struct{}

// NewCopier creates a copier.
func NewCopier() *Copier {
	return &Copier{}
}

// Copy writes src to dst, which must not exist. A partial dst is removed.
func (c *Copier) Copy(ctx context.Context, src, dst string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source is a directory: %s", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, &ctxReader{ctx: ctx, r: in}); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// Keep the source modification time.
	_ = os.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
