package compat

import (
	"errors"
	"fmt"
	"sync"

	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/version"
)

// ErrAdapterNotFound indicates no registered adapter matches the
// contract version a plugin targets. Loading must not proceed: the
// lifecycle controller assumes the current plugin shape.
var ErrAdapterNotFound = errors.New("no compatibility adapter found")

// Adapter rewrites a legacy-shaped plugin into the current contract.
// Adaptation is structural only — calling convention and naming, never
// business logic.
type Adapter interface {
	// Pattern returns the contract version pattern this adapter serves,
	// either exact ("2.1.0") or a wildcard major ("1.x").
	Pattern() string

	// Adapt wraps the legacy plugin value into the current shape.
	// targetVersion is the contract version the plugin declares.
	Adapt(p any, targetVersion string) (*AdaptedPlugin, error)
}

// AdaptedPlugin is the result of bridging a legacy plugin. It is
// produced once per plugin load and owned by that plugin's lifecycle
// controller for its entire life.
type AdaptedPlugin struct {
	// Plugin is the bridged plugin in the current shape.
	Plugin plugin.Plugin

	// PolyfillsRequired names the host features the bridged hooks rely
	// on; the host installs shims for any that are missing.
	PolyfillsRequired []string

	// Warnings lists one deprecation warning per bridged surface,
	// attributed to the legacy API name that was used.
	Warnings []deprecation.Warning

	// Limitations describes, in plain language, what the bridge cannot
	// deliver (e.g. hooks the legacy contract had no equivalent for).
	Limitations []string
}

// readapted is implemented by plugins this package produced, so a
// second Adapt call can return the original result instead of wrapping
// the wrapper.
type readapted interface {
	Adapted() *AdaptedPlugin
}

// Registry holds an ordered list of (pattern, adapter) pairs. Selection
// is first-match in registration order, which keeps behavior obvious
// when patterns overlap.
type Registry struct {
	mu       sync.RWMutex
	adapters []Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry creates a registry with the standard adapters for the
// supported legacy contract majors, in order: 1.x, then 2.x.
// Deprecation warnings emitted by bridged hooks go to dep; a nil dep
// disables runtime warnings but not adaptation.
func DefaultRegistry(dep *deprecation.Manager) *Registry {
	r := NewRegistry()
	r.Register(NewV1Adapter(dep))
	r.Register(NewV2Adapter(dep))
	return r
}

// Register appends an adapter to the registry.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = append(r.adapters, a)
}

// Get returns the first adapter whose pattern matches the given
// contract version, or nil if none matches.
func (r *Registry) Get(targetVersion string) Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.adapters {
		if version.Matches(a.Pattern(), targetVersion) {
			return a
		}
	}
	return nil
}

// Patterns returns the registered patterns in evaluation order.
func (r *Registry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		patterns = append(patterns, a.Pattern())
	}
	return patterns
}

// Adapt bridges p, which targets the given contract version, into the
// current plugin shape.
//
// Values that are already current-shaped pass through untouched: a
// plugin produced by an earlier Adapt call returns its original result
// (same metadata, no double-wrapping), and a native plugin.Plugin is
// wrapped in a bare AdaptedPlugin with no polyfills or warnings.
func (r *Registry) Adapt(p any, targetVersion string) (*AdaptedPlugin, error) {
	if ra, ok := p.(readapted); ok {
		return ra.Adapted(), nil
	}
	if pp, ok := p.(plugin.Plugin); ok {
		return &AdaptedPlugin{Plugin: pp}, nil
	}

	a := r.Get(targetVersion)
	if a == nil {
		return nil, fmt.Errorf("%w for contract version %s", ErrAdapterNotFound, targetVersion)
	}
	return a.Adapt(p, targetVersion)
}

// bridged is the current-shaped plugin both built-in adapters produce.
// It carries its AdaptedPlugin so re-adaptation is a lookup, not a
// re-wrap.
type bridged struct {
	name        string
	pluginVer   string
	description string
	hooks       plugin.Hooks
	descriptor  plugin.Descriptor
	result      *AdaptedPlugin
}

func newBridged(name, pluginVer, description string, hooks plugin.Hooks) *bridged {
	return &bridged{
		name:        name,
		pluginVer:   pluginVer,
		description: description,
		hooks:       hooks,
		descriptor:  plugin.Describe(name, pluginVer, description, hooks, false),
	}
}

func (b *bridged) Name() string                    { return b.name }
func (b *bridged) Version() string                 { return b.pluginVer }
func (b *bridged) Description() string             { return b.description }
func (b *bridged) Hooks() plugin.Hooks             { return b.hooks }
func (b *bridged) Capabilities() plugin.Descriptor { return b.descriptor }
func (b *bridged) ConfigSchema() *schema.JSON      { return nil }
func (b *bridged) Adapted() *AdaptedPlugin         { return b.result }

var (
	_ plugin.Plugin = (*bridged)(nil)
	_ readapted     = (*bridged)(nil)
)
