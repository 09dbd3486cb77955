package source

import (
	"context"
	"fmt"

	"GrantScanner/internal/normalize"
)

// Request carries per-run fetch parameters shared by all providers.
type Request struct {
	// Since bounds incremental fetches (YYYY-MM-DD) where the provider
	// supports it; providers without incremental APIs ignore it.
	Since string
}

// Source pulls raw records from one upstream provider family. The name
// doubles as the dispatcher hint for records fetched through it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) ([]normalize.Raw, error)
}

// Registry keeps registered sources in registration order.
type Registry struct {
	names   map[string]Source
	ordered []Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: map[string]Source{}}
}

// Register adds a source; re-registering a name replaces it in place.
func (r *Registry) Register(src Source) {
	if r.names == nil {
		r.names = map[string]Source{}
	}
	if _, ok := r.names[src.Name()]; !ok {
		r.ordered = append(r.ordered, src)
	} else {
		for i, existing := range r.ordered {
			if existing.Name() == src.Name() {
				r.ordered[i] = src
				break
			}
		}
	}
	r.names[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.names[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}

// All returns the sources in registration order.
func (r *Registry) All() []Source {
	return r.ordered
}
