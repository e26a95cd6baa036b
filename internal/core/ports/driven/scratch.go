package driven

// ScratchProvider hands out run-scoped scratch directories.
type ScratchProvider interface {
	// Create makes a fresh directory for a run. The returned cleanup
	// removes it and everything below it; it is safe to call twice.
	Create(runID string) (dir string, cleanup func() error, err error)
}
