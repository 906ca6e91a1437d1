package capability

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/atriumhq/sdk/version"
)

// Shim builds the provider for one missing host capability from what is
// already registered. Shims are applied in catalog order, so a shim may
// rely on the providers of shims listed before it.
type Shim struct {
	// Feature is the capability the shim supplies, named as the version
	// detector names it.
	Feature string

	// Provides is the provider name the built shim registers under.
	Provides string

	// Build constructs the provider. It may look up prerequisites in
	// the registry and fail when they are absent.
	Build func(r *Registry) (any, error)
}

// sdkProvided lists features newer hosts ship inside the SDK itself.
// Nothing needs installing when the host predates them.
var sdkProvided = map[string]bool{
	version.FeatureHealthChecks:  true,
	version.FeatureConfigSchemas: true,
	version.FeatureConditions:    true,
}

// DefaultShims returns the standard shim catalog, ordered so dependent
// shims come after what they build on.
func DefaultShims() []Shim {
	return []Shim{
		{
			Feature:  version.FeatureEventSubscribe,
			Provides: ProviderEvents,
			Build: func(r *Registry) (any, error) {
				p, ok := r.Lookup(ProviderLegacyEvents)
				if !ok {
					return nil, fmt.Errorf("no legacy event bus to bridge")
				}
				bus, ok := p.(LegacyBus)
				if !ok {
					return nil, fmt.Errorf("legacy event provider is %T, not a LegacyBus", p)
				}
				return NewBridge(bus), nil
			},
		},
		{
			Feature:  version.FeatureStorageNamespaces,
			Provides: ProviderNamespaces,
			Build: func(r *Registry) (any, error) {
				return prefixNamespaces{}, nil
			},
		},
		{
			Feature:  version.FeatureContexts,
			Provides: ProviderContexts,
			Build: func(r *Registry) (any, error) {
				return NewContextFactory(r), nil
			},
		},
	}
}

// Installer fills capability gaps on older hosts by registering shim
// providers. Installation is idempotent: a feature is installed at most
// once for the installer's lifetime, and a capability the host turns
// out to provide natively is left untouched rather than wrapped.
type Installer struct {
	logger *slog.Logger
	reg    *Registry

	mu        sync.Mutex
	shims     []Shim
	installed map[string]bool
}

// NewInstaller creates an installer over the registry, seeded with the
// default shim catalog.
func NewInstaller(reg *Registry, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{
		logger:    logger,
		reg:       reg,
		shims:     DefaultShims(),
		installed: make(map[string]bool),
	}
}

// RegisterShim appends a shim for a feature the default catalog does
// not cover.
func (i *Installer) RegisterShim(s Shim) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.shims = append(i.shims, s)
}

// Install registers shims for the given missing features. Features
// already installed are skipped; features the SDK provides itself need
// no shim; a feature with no shim at all yields an ErrNoShim error.
// Errors are joined so one broken shim does not stop the others.
func (i *Installer) Install(missing []string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	want := make(map[string]bool, len(missing))
	for _, f := range missing {
		if f != "" && !sdkProvided[f] {
			want[f] = true
		}
	}

	var errs []error
	for _, shim := range i.shims {
		if !want[shim.Feature] {
			continue
		}
		delete(want, shim.Feature)

		if i.installed[shim.Feature] {
			continue
		}
		if i.reg.Has(shim.Provides) {
			// Present natively; wrapping it would change behavior.
			i.installed[shim.Feature] = true
			continue
		}

		provider, err := shim.Build(i.reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("polyfill %s: %w", shim.Feature, err))
			continue
		}
		if err := i.reg.Register(shim.Provides, provider); err != nil {
			errs = append(errs, fmt.Errorf("polyfill %s: %w", shim.Feature, err))
			continue
		}

		i.installed[shim.Feature] = true
		i.logger.Info("polyfill installed",
			slog.String("feature", shim.Feature),
			slog.String("provides", shim.Provides))
	}

	leftover := make([]string, 0, len(want))
	for f := range want {
		leftover = append(leftover, f)
	}
	sort.Strings(leftover)
	for _, f := range leftover {
		errs = append(errs, fmt.Errorf("%w: %s", ErrNoShim, f))
	}

	return errors.Join(errs...)
}

// Installed returns the features installed so far, sorted.
func (i *Installer) Installed() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	features := make([]string, 0, len(i.installed))
	for f := range i.installed {
		features = append(features, f)
	}
	sort.Strings(features)
	return features
}
