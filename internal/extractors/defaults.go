package extractors

import (
	"github.com/custodia-labs/pdfsift/internal/extractors/ledongthuc"
	"github.com/custodia-labs/pdfsift/internal/extractors/tabula"
)

// DefaultRegistry returns a registry with every built-in backend.
func DefaultRegistry() *Registry {
	return NewRegistry(
		tabula.New(),
		ledongthuc.New(),
	)
}
