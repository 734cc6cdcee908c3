// Package external wires platform adapters into a lookup registry.
package external

import (
	"sort"
	"sync"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// Registry maps canonical platform names to their adapters. Resolution is a
// pure lookup; adapters touch the network only when asked to fetch.
type Registry struct {
	mu       sync.RWMutex
	adapters map[platform.Name]platform.Adapter
}

// NewRegistry creates a registry holding the given adapters.
func NewRegistry(adapters ...platform.Adapter) *Registry {
	r := &Registry{adapters: make(map[platform.Name]platform.Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces the adapter for its platform.
func (r *Registry) Register(adapter platform.Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Name().Normalize()] = adapter
}

// Resolve returns the adapter for the platform. Names are matched
// case-insensitively. Unknown platforms fail with the offending name in the
// error message.
func (r *Registry) Resolve(name platform.Name) (platform.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	adapter, ok := r.adapters[name.Normalize()]
	if !ok {
		return nil, shared.NewDomainError("platform", "resolve", shared.ErrUnsupportedPlatform,
			"platform "+string(name)+" is not supported")
	}
	return adapter, nil
}

// Supported returns the registered platform names in sorted order.
func (r *Registry) Supported() []platform.Name {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]platform.Name, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
