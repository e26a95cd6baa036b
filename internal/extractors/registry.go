package extractors

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps backend names to extractors.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.ExtractorBackend]driven.PageTextExtractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.PageTextExtractor) *Registry {
	r := &Registry{
		extractors: make(map[domain.ExtractorBackend]driven.PageTextExtractor),
	}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor, replacing any registered for the same backend.
func (r *Registry) Register(extractor driven.PageTextExtractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors[extractor.Backend()] = extractor
}

// Get returns the extractor for backend.
func (r *Registry) Get(backend domain.ExtractorBackend) (driven.PageTextExtractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.extractors[backend]
	if !ok {
		return nil, fmt.Errorf("%w: extractor %q", domain.ErrUnsupportedType, backend)
	}
	return e, nil
}

// Backends returns registered backends in name order.
func (r *Registry) Backends() []domain.ExtractorBackend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ExtractorBackend, 0, len(r.extractors))
	for b := range r.extractors {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
