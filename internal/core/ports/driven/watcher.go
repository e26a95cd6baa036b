package driven

import "context"

// FileChange is a filesystem notification below a watched root.
type FileChange struct {
	// Path is the affected file.
	Path string

	// Op is a short description such as "create" or "remove".
	Op string
}

// ChangeWatcher reports changes to PDF and ZIP files under a directory tree.
type ChangeWatcher interface {
	// Watch starts watching root recursively. The returned channel is
	// closed when ctx is cancelled or the watcher fails.
	Watch(ctx context.Context, root string) (<-chan FileChange, error)
}
