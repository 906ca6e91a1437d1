package capability

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Registry holds the host's named capability providers. It replaces
// mutation of process globals: everything a plugin can reach is
// registered here explicitly, and polyfill shims register through the
// same door as native implementations.
type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	providers map[string]any
}

// NewRegistry creates an empty capability registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:    logger,
		providers: make(map[string]any),
	}
}

// Register adds a provider under the given name.
// Returns an error if a provider with the same name already exists.
func (r *Registry) Register(name string, provider any) error {
	if name == "" {
		return fmt.Errorf("capability name cannot be empty")
	}
	if provider == nil {
		return ErrNilProvider
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("capability already registered: %s", name)
	}

	r.providers[name] = provider
	r.logger.Info("capability registered", slog.String("name", name))
	return nil
}

// Lookup retrieves a provider by name.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Has reports whether a provider is registered under the name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns all registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Storage returns the provider registered under ProviderStorage when it
// implements the Storage interface.
func (r *Registry) Storage() (Storage, bool) {
	p, ok := r.Lookup(ProviderStorage)
	if !ok {
		return nil, false
	}
	s, ok := p.(Storage)
	return s, ok
}

// Events returns the provider registered under ProviderEvents when it
// implements the Events interface.
func (r *Registry) Events() (Events, bool) {
	p, ok := r.Lookup(ProviderEvents)
	if !ok {
		return nil, false
	}
	e, ok := p.(Events)
	return e, ok
}

// HTTP returns the provider registered under ProviderHTTP when it
// implements the HTTP interface.
func (r *Registry) HTTP() (HTTP, bool) {
	p, ok := r.Lookup(ProviderHTTP)
	if !ok {
		return nil, false
	}
	h, ok := p.(HTTP)
	return h, ok
}

// Contexts returns the provider registered under ProviderContexts when
// it implements the ContextFactory interface.
func (r *Registry) Contexts() (ContextFactory, bool) {
	p, ok := r.Lookup(ProviderContexts)
	if !ok {
		return nil, false
	}
	f, ok := p.(ContextFactory)
	return f, ok
}

// Namespaces returns the provider registered under ProviderNamespaces
// when it implements the NamespaceFactory interface.
func (r *Registry) Namespaces() (NamespaceFactory, bool) {
	p, ok := r.Lookup(ProviderNamespaces)
	if !ok {
		return nil, false
	}
	f, ok := p.(NamespaceFactory)
	return f, ok
}
