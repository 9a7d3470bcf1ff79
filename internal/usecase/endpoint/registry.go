package endpoint

import (
	"fmt"
	"sync"

	"feedgate/internal/config"
)

// Registry is a rebuildable, path-keyed map of built endpoints.
// Reloads acquire exclusive access only for the atomic pointer swap;
// in-flight requests keep running against the *Endpoint snapshot they
// captured at dispatch, even across a concurrent reload.
type Registry struct {
	mu        sync.RWMutex
	endpoints map[string]*Endpoint
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{endpoints: map[string]*Endpoint{}}
}

// Get returns the endpoint bound to path, or ok=false if none is
// registered.
func (r *Registry) Get(path string) (*Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.endpoints[path]
	return ep, ok
}

// List returns every registered endpoint, in no particular order.
func (r *Registry) List() []*Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Endpoint, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		out = append(out, ep)
	}
	return out
}

// Reload builds every endpoint in cfg from scratch and atomically
// swaps them in. If any endpoint fails to build, the registry is left
// unchanged and the error names every failing path.
func Reload(r *Registry, cfg config.AppConfig, shared Shared) error {
	shared.BaseURL = cfg.BaseURL

	built := make(map[string]*Endpoint, len(cfg.Endpoints))
	for _, ec := range cfg.Endpoints {
		ep, err := Build(ec, shared)
		if err != nil {
			return fmt.Errorf("endpoint registry reload: %w", err)
		}
		built[ec.Path] = ep
	}

	r.mu.Lock()
	r.endpoints = built
	r.mu.Unlock()
	return nil
}
