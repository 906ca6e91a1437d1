package sdk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/compat"
	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/lifecycle"
	"github.com/atriumhq/sdk/manifest"
	"github.com/atriumhq/sdk/registry"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// Manager provides the main SDK interface for hosting Atrium plugins.
// It tracks one lifecycle controller per installed plugin and wires each
// of them to the shared host services: the version detector, the
// deprecation manager, the compatibility adapters, the capability
// registry, and — when configured — the instance registry and the health
// endpoint.
//
// The Manager acts as the host's front door, coordinating between:
//   - Plugins: the extensions under management, current or legacy
//   - Lifecycle: per-plugin install/enable/disable state machines
//   - Capabilities: the storage, events, and HTTP surface plugins use
//   - Compatibility: adapters and polyfills that keep old plugins running
type Manager interface {
	// Plugin management

	// Install validates the manifest, bridges the source through the
	// compatibility layer, and runs the plugin's install hook. The
	// returned controller is tracked under the manifest's name and
	// drives all further transitions.
	//
	// When the install hook itself fails, the plugin is tracked anyway —
	// in StateError, with the controller returned alongside the error —
	// so the host can inspect, Reset, or Remove it. A failure before any
	// plugin code ran (validation, adaptation, polyfills) tracks nothing.
	Install(ctx context.Context, source any, m *manifest.Manifest) (*lifecycle.Controller, error)

	// Get retrieves the controller for an installed plugin by name.
	Get(name string) (*lifecycle.Controller, error)

	// List returns the controllers of all tracked plugins, sorted by
	// plugin name.
	List() []*lifecycle.Controller

	// Enable activates an installed plugin by name.
	Enable(ctx context.Context, name string) error

	// Disable deactivates an enabled plugin by name.
	Disable(ctx context.Context, name string) error

	// Uninstall removes an installed or disabled plugin by name. The
	// controller stays tracked; Install on it runs again, or Remove
	// drops it.
	Uninstall(ctx context.Context, name string) error

	// Health probes a plugin's health, bounding the wait by timeout.
	Health(ctx context.Context, name string, timeout time.Duration) (types.HealthStatus, error)

	// Remove drops the manager's handle on a plugin. Only uninstalled or
	// destroyed plugins can be removed; anything else must be wound down
	// first so no registration or subscription leaks.
	Remove(name string) error

	// Shared services

	// Versions returns the host version detector shared by all plugins.
	Versions() *version.Detector

	// Deprecations returns the deprecation manager tracking legacy API use.
	Deprecations() *deprecation.Manager

	// Capabilities returns the host capability registry.
	Capabilities() *capability.Registry

	// Lifecycle

	// Close disables every enabled plugin so registrations withdraw and
	// serving status flips off, then refuses further installs. Errors
	// from individual plugins are joined; Close never stops at the first
	// failure. Closing twice is a no-op.
	Close() error
}

// manager is the concrete implementation of Manager.
type manager struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	meter     metric.Meter
	host      *version.Detector
	deps      *deprecation.Manager
	adapters  *compat.Registry
	caps      *capability.Registry
	polyfills *capability.Installer
	instances registry.Registry
	health    lifecycle.HealthReporter
	identity  types.Identity
	endpoint  string

	mu      sync.RWMutex
	plugins map[string]*lifecycle.Controller
	closed  bool
}

// Install installs a plugin from its source and manifest.
func (m *manager) Install(ctx context.Context, source any, man *manifest.Manifest) (*lifecycle.Controller, error) {
	if man == nil {
		return nil, NewValidationError("Manager.Install", fmt.Errorf("manifest is required"))
	}
	if source == nil {
		return nil, NewValidationError("Manager.Install", fmt.Errorf("plugin source is required"))
	}

	bundle, err := m.bundleFor(man.Name)
	if err != nil {
		return nil, NewConfigurationError("Manager.Install", err)
	}

	ctrl, err := lifecycle.NewController(lifecycle.Config{
		Manifest:     man,
		Source:       source,
		Host:         m.host,
		Adapters:     m.adapters,
		Deprecations: m.deps,
		Polyfills:    m.polyfills,
		Capabilities: bundle,
		Identity:     m.identity,
		Instances:    m.instances,
		Endpoint:     m.endpoint,
		Health:       m.health,
		Logger:       m.logger,
		Tracer:       m.tracer,
		Meter:        m.meter,
	})
	if err != nil {
		return nil, NewConfigurationError("Manager.Install", err)
	}

	// Reserve the name before running the hook so a concurrent install
	// of the same plugin fails fast instead of installing twice.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, NewLifecycleError("Manager.Install", ErrManagerClosed)
	}
	if _, exists := m.plugins[man.Name]; exists {
		m.mu.Unlock()
		return nil, NewValidationError("Manager.Install", fmt.Errorf("%w: %s", ErrAlreadyInstalled, man.Name))
	}
	m.plugins[man.Name] = ctrl
	m.mu.Unlock()

	if err := ctrl.Install(ctx); err != nil {
		if ctrl.State() == lifecycle.StateUninstalled {
			// Nothing of the plugin ran; drop the reservation again.
			m.mu.Lock()
			delete(m.plugins, man.Name)
			m.mu.Unlock()
			return nil, err
		}
		// The hook failed: the plugin is in StateError and stays
		// tracked so the host can Reset, Destroy, or Remove it.
		return ctrl, err
	}

	m.logger.Info("plugin installed",
		slog.String("name", man.Name),
		slog.String("version", man.Version),
	)
	return ctrl, nil
}

// Get retrieves a tracked plugin's controller by name.
func (m *manager) Get(name string) (*lifecycle.Controller, error) {
	return m.lookup("Manager.Get", name)
}

// List returns all tracked controllers sorted by plugin name.
func (m *manager) List() []*lifecycle.Controller {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.plugins))
	for name := range m.plugins {
		names = append(names, name)
	}
	sort.Strings(names)

	ctrls := make([]*lifecycle.Controller, 0, len(names))
	for _, name := range names {
		ctrls = append(ctrls, m.plugins[name])
	}
	return ctrls
}

// Enable activates a plugin by name.
func (m *manager) Enable(ctx context.Context, name string) error {
	ctrl, err := m.lookup("Manager.Enable", name)
	if err != nil {
		return err
	}
	return ctrl.Enable(ctx)
}

// Disable deactivates a plugin by name.
func (m *manager) Disable(ctx context.Context, name string) error {
	ctrl, err := m.lookup("Manager.Disable", name)
	if err != nil {
		return err
	}
	return ctrl.Disable(ctx)
}

// Uninstall removes a plugin by name.
func (m *manager) Uninstall(ctx context.Context, name string) error {
	ctrl, err := m.lookup("Manager.Uninstall", name)
	if err != nil {
		return err
	}
	return ctrl.Uninstall(ctx)
}

// Health probes a plugin's health by name.
func (m *manager) Health(ctx context.Context, name string, timeout time.Duration) (types.HealthStatus, error) {
	ctrl, err := m.lookup("Manager.Health", name)
	if err != nil {
		return types.HealthStatus{}, err
	}
	return ctrl.HealthCheck(ctx, timeout), nil
}

// Remove drops the handle on an uninstalled or destroyed plugin.
func (m *manager) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctrl, ok := m.plugins[name]
	if !ok {
		return NewNotFoundError("Manager.Remove", fmt.Errorf("%w: %s", ErrPluginNotFound, name))
	}

	switch st := ctrl.State(); st {
	case lifecycle.StateUninstalled, lifecycle.StateDestroyed:
		delete(m.plugins, name)
		m.logger.Info("plugin removed", slog.String("name", name))
		return nil
	default:
		return NewLifecycleError("Manager.Remove",
			fmt.Errorf("plugin %s is %s; uninstall or destroy it first", name, st))
	}
}

// Versions returns the shared host version detector.
func (m *manager) Versions() *version.Detector {
	return m.host
}

// Deprecations returns the shared deprecation manager.
func (m *manager) Deprecations() *deprecation.Manager {
	return m.deps
}

// Capabilities returns the host capability registry.
func (m *manager) Capabilities() *capability.Registry {
	return m.caps
}

// Close quiesces every enabled plugin and shuts the manager down.
func (m *manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	ctrls := make([]*lifecycle.Controller, 0, len(m.plugins))
	for _, ctrl := range m.plugins {
		ctrls = append(ctrls, ctrl)
	}
	m.mu.Unlock()

	m.logger.Info("shutting down plugin manager")

	var errs []error
	for _, ctrl := range ctrls {
		if ctrl.State() != lifecycle.StateEnabled {
			continue
		}
		// A disable-hook failure still lands the plugin in
		// StateDisabled with its registration withdrawn, so the
		// shutdown proceeds either way.
		if err := ctrl.Disable(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("disable %s: %w", ctrl.Manifest().Name, err))
		}
	}
	return errors.Join(errs...)
}

// lookup fetches a tracked controller, wrapping misses in an SDKError
// carrying the calling operation.
func (m *manager) lookup(op, name string) (*lifecycle.Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ctrl, ok := m.plugins[name]
	if !ok {
		return nil, NewNotFoundError(op, fmt.Errorf("%w: %s", ErrPluginNotFound, name))
	}
	return ctrl, nil
}

// bundleFor assembles the capability bundle one plugin will see. The
// registered ContextFactory wins when the host (or a polyfill) provides
// one; otherwise the bundle is built from the discrete providers.
func (m *manager) bundleFor(name string) (capability.Bundle, error) {
	factory, ok := m.caps.Contexts()
	if !ok {
		factory = capability.NewContextFactory(m.caps)
	}
	return factory.ForPlugin(name)
}
