package engine

import (
	"sync"

	"github.com/hearthhub/configflow/pkg/api"
)

// Registry maps integration domains to their handler factories. Domains with
// no bespoke handler resolve to the fallback factory (the hub proxy), so
// every domain is always resolvable
type Registry struct {
	factories map[api.Domain]Factory
	fallback  Factory
	mu        sync.RWMutex
}

// NewRegistry creates a registry with the given fallback factory
func NewRegistry(fallback Factory) *Registry {
	return &Registry{
		factories: map[api.Domain]Factory{},
		fallback:  fallback,
	}
}

// Register binds a domain to its handler factory. Registration is idempotent
// per domain; the last registration wins, which lets tests override builtins
func (r *Registry) Register(domain api.Domain, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[domain] = factory
}

// Resolve returns the factory for the domain, never nil
func (r *Registry) Resolve(domain api.Domain) Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if factory, ok := r.factories[domain]; ok {
		return factory
	}
	return r.fallback
}

// Registered reports whether the domain has a bespoke handler
func (r *Registry) Registered(domain api.Domain) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[domain]
	return ok
}

// Domains returns every domain with a bespoke handler
func (r *Registry) Domains() []api.Domain {
	r.mu.RLock()
	defer r.mu.RUnlock()
	domains := make([]api.Domain, 0, len(r.factories))
	for domain := range r.factories {
		domains = append(domains, domain)
	}
	return domains
}
