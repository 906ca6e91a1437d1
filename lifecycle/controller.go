package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/compat"
	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/manifest"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/registry"
	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// Errors returned by lifecycle transitions.
var (
	// ErrInvalidTransition is returned when an operation is requested
	// from a state it cannot run in. No hook is invoked.
	ErrInvalidTransition = errors.New("lifecycle: invalid state transition")

	// ErrHookFailed wraps errors returned (or panics raised) by plugin
	// hooks. The hook's own error stays reachable through errors.Is
	// and errors.Unwrap.
	ErrHookFailed = errors.New("lifecycle: plugin hook failed")

	// ErrManifestInvalid wraps manifest validation failures during
	// Install.
	ErrManifestInvalid = errors.New("lifecycle: manifest validation failed")
)

// HealthReporter receives serving-state flips as the plugin enables
// and disables. The serve package's gRPC health server implements it;
// hosts without a health endpoint leave it nil.
type HealthReporter interface {
	SetServing(name string, up bool)
}

// Config assembles a Controller. Manifest and Source are required;
// everything else has a workable default or is optional.
type Config struct {
	// Manifest describes the plugin under management. Required.
	Manifest *manifest.Manifest

	// Source is the plugin object: a plugin.Plugin built against the
	// current contract, or a legacy shape such as *compat.PluginV1.
	// Required.
	Source any

	// Host resolves the host version and capability set. Defaults to a
	// probe-less detector, which reads as the oldest supported host.
	Host *version.Detector

	// Adapters bridges legacy sources. Defaults to the standard
	// catalog over Deprecations.
	Adapters *compat.Registry

	// Deprecations records legacy surface usage. Optional.
	Deprecations *deprecation.Manager

	// Polyfills fills host capability gaps before the install hook
	// runs. Optional; nil skips polyfill installation.
	Polyfills *capability.Installer

	// Capabilities is the bundle exposed to the plugin through its
	// runtime. Storage should arrive already scoped to this plugin.
	Capabilities capability.Bundle

	// Identity is the host user exposed through the runtime.
	Identity types.Identity

	// Instances, when set, carries a registration while the plugin is
	// enabled.
	Instances registry.Registry

	// Endpoint is the address advertised in the instance registry.
	Endpoint string

	// Health, when set, receives serving-state flips on enable and
	// disable.
	Health HealthReporter

	// Logger receives transition logs, tagged with the plugin name.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer spans each transition. Defaults to a no-op tracer.
	Tracer trace.Tracer

	// Meter, when set, records the transition counter.
	Meter metric.Meter
}

// Controller drives one plugin through the lifecycle state machine.
//
// A mutex serializes transitions, so hooks for one plugin never
// interleave: a Disable requested while an Enable is in flight waits
// its turn. Controllers for different plugins are independent. Every
// hook runs at most once per transition request and is awaited before
// the state settles; a transition requested from an invalid source
// state is rejected with ErrInvalidTransition before any hook runs.
//
// Hooks run to completion. Only HealthCheck bounds the plugin's code
// with a timeout, because its result feeds an external contract;
// cancelling an in-flight install or disable would leave half-applied
// side effects behind.
type Controller struct {
	man    *manifest.Manifest
	source any

	host      *version.Detector
	adapters  *compat.Registry
	deps      *deprecation.Manager
	polyfills *capability.Installer
	bundle    capability.Bundle
	identity  types.Identity
	instances registry.Registry
	endpoint  string
	health    HealthReporter

	baseLogger *slog.Logger
	logger     *slog.Logger
	obs        *observer

	mu         sync.Mutex
	state      State
	lastErr    error
	adapted    *compat.AdaptedPlugin
	plug       plugin.Plugin
	confSchema *schema.JSON
	rt         plugin.Runtime
	tracked    *trackedEvents
	instanceID string
}

// NewController creates the controller for one plugin. The plugin
// starts in StateUninstalled; nothing of it runs until Install.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Manifest == nil {
		return nil, fmt.Errorf("manifest is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("plugin source is required")
	}

	baseLogger := cfg.Logger
	if baseLogger == nil {
		baseLogger = slog.Default()
	}
	logger := baseLogger.With(slog.String("plugin", cfg.Manifest.Name))

	host := cfg.Host
	if host == nil {
		host = version.NewDetector(version.Config{Logger: logger})
	}
	adapters := cfg.Adapters
	if adapters == nil {
		adapters = compat.DefaultRegistry(cfg.Deprecations)
	}

	return &Controller{
		man:        cfg.Manifest,
		source:     cfg.Source,
		host:       host,
		adapters:   adapters,
		deps:       cfg.Deprecations,
		polyfills:  cfg.Polyfills,
		bundle:     cfg.Capabilities,
		identity:   cfg.Identity,
		instances:  cfg.Instances,
		endpoint:   cfg.Endpoint,
		health:     cfg.Health,
		baseLogger: baseLogger,
		logger:     logger,
		obs:        newObserver(cfg.Tracer, cfg.Meter, logger),
		state:      StateUninstalled,
	}, nil
}

// Install validates the manifest, bridges the source through a
// compatibility adapter when it targets a legacy contract, installs
// the polyfills the host and the adapter call for, and runs the
// install hook. Success lands in StateInstalled. A validation,
// adaptation, or polyfill failure surfaces before any plugin code runs
// and leaves the state Uninstalled; a hook failure lands in StateError
// with the hook's error preserved.
func (c *Controller) Install(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "install", c.man.Name, c.man.Version)
	if c.state != StateUninstalled {
		return c.reject(ctx, span, "install")
	}

	if err := c.prepare(); err != nil {
		c.obs.end(ctx, span, "install", outcomeError, c.state, err)
		return err
	}

	if hookErr := c.run(ctx, "install", c.hookFn(c.plug.Hooks().OnInstall)); hookErr != nil {
		return c.settle(ctx, span, "install", StateError, hookErr)
	}
	return c.settle(ctx, span, "install", StateInstalled, nil)
}

// prepare runs everything that must succeed before the install hook:
// manifest validation (with legacy permission translation for 1.x
// manifests), adapter resolution, polyfill installation, and runtime
// construction.
func (c *Controller) prepare() error {
	m := c.man
	if m.ManifestVersion == 1 {
		translated := *m
		translated.Permissions = compat.TranslateManifestPermissions(m.Permissions, m.Name, c.deps)
		m = &translated
	}

	result := manifest.Validate(m)
	for _, w := range result.Warnings {
		c.logger.Warn("manifest warning", slog.String("warning", w))
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrManifestInvalid, strings.Join(result.Errors, "; "))
	}

	adapted, err := c.adapters.Adapt(c.source, contractVersion(c.man))
	if err != nil {
		return err
	}
	c.adapted = adapted
	c.plug = adapted.Plugin
	for _, lim := range adapted.Limitations {
		c.logger.Debug("compatibility limitation", slog.String("limitation", lim))
	}

	// A schema the plugin declares in code wins over one declared in the
	// manifest; most plugins declare only one of the two.
	if s := c.plug.ConfigSchema(); s != nil {
		c.confSchema = s
	} else if len(m.ConfigSchema) > 0 {
		s, err := schema.FromMap(m.ConfigSchema)
		if err != nil {
			return fmt.Errorf("manifest config_schema is invalid: %w", err)
		}
		c.confSchema = &s
	}

	if c.polyfills != nil {
		if err := c.polyfills.Install(c.missingFeatures(adapted)); err != nil {
			return fmt.Errorf("polyfill installation failed: %w", err)
		}
	}

	bundle := c.bundle
	if bundle.Events != nil {
		c.tracked = newTrackedEvents(bundle.Events)
		bundle.Events = c.tracked
	}
	c.rt = plugin.NewRuntime(plugin.RuntimeConfig{
		PluginName: c.man.Name,
		Bundle:     bundle,
		Logger:     c.baseLogger,
		Identity:   c.identity,
	})
	return nil
}

// missingFeatures merges what the host lacks with what the adapter
// says the bridged plugin depends on.
func (c *Controller) missingFeatures(adapted *compat.AdaptedPlugin) []string {
	seen := make(map[string]bool)
	for _, f := range c.host.MissingFeatures() {
		seen[f] = true
	}
	for _, f := range adapted.PolyfillsRequired {
		seen[f] = true
	}

	missing := make([]string, 0, len(seen))
	for f := range seen {
		missing = append(missing, f)
	}
	sort.Strings(missing)
	return missing
}

// Enable activates the plugin from StateInstalled or StateDisabled.
// On success the instance is announced for discovery and the health
// endpoint flips to serving; a hook failure lands in StateError.
func (c *Controller) Enable(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "enable", c.man.Name, c.man.Version)
	if c.state != StateInstalled && c.state != StateDisabled {
		return c.reject(ctx, span, "enable")
	}

	if hookErr := c.run(ctx, "enable", c.hookFn(c.plug.Hooks().OnEnable)); hookErr != nil {
		return c.settle(ctx, span, "enable", StateError, hookErr)
	}

	c.announce(ctx)
	return c.settle(ctx, span, "enable", StateEnabled, nil)
}

// Disable deactivates the plugin from StateEnabled. Cleanup runs even
// when the hook errors: event subscriptions are released, the registry
// entry is withdrawn, and the health endpoint flips to not-serving.
// The state becomes StateDisabled either way; a hook error is surfaced
// in the return value rather than masked by the cleanup.
func (c *Controller) Disable(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "disable", c.man.Name, c.man.Version)
	if c.state != StateEnabled {
		return c.reject(ctx, span, "disable")
	}

	hookErr := c.run(ctx, "disable", c.hookFn(c.plug.Hooks().OnDisable))

	// A plugin that failed to disable cleanly must still stop
	// receiving traffic.
	c.withdraw(ctx)

	return c.settle(ctx, span, "disable", StateDisabled, hookErr)
}

// Update notifies the plugin that the host replaced one of its
// versions with another. Allowed from StateEnabled or StateDisabled;
// the state is unchanged on success.
func (c *Controller) Update(ctx context.Context, oldVersion, newVersion string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "update", c.man.Name, c.man.Version)
	if c.state != StateEnabled && c.state != StateDisabled {
		return c.reject(ctx, span, "update")
	}

	var h func(context.Context) error
	if hs := c.plug.Hooks(); hs.OnUpdate != nil {
		h = func(ctx context.Context) error {
			return hs.OnUpdate(ctx, c.rt, oldVersion, newVersion)
		}
	}
	if hookErr := c.run(ctx, "update", h); hookErr != nil {
		return c.settle(ctx, span, "update", StateError, hookErr)
	}
	return c.settle(ctx, span, "update", c.state, nil)
}

// ConfigChange delivers a configuration change to an enabled plugin,
// handing it both configurations so it can diff them and react
// idempotently. When a config schema is declared — programmatically on
// the plugin or as config_schema in the manifest — the new
// configuration is validated against it first; a schema rejection
// leaves the state and the plugin untouched.
func (c *Controller) ConfigChange(ctx context.Context, oldConfig, newConfig map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "config_change", c.man.Name, c.man.Version)
	if c.state != StateEnabled {
		return c.reject(ctx, span, "config_change")
	}

	if c.confSchema != nil {
		if err := c.confSchema.Validate(newConfig); err != nil {
			err = fmt.Errorf("new config rejected by schema: %w", err)
			c.obs.end(ctx, span, "config_change", outcomeError, c.state, err)
			return err
		}
	}

	var h func(context.Context) error
	if hs := c.plug.Hooks(); hs.OnConfigChange != nil {
		h = func(ctx context.Context) error {
			return hs.OnConfigChange(ctx, c.rt, oldConfig, newConfig)
		}
	}
	if hookErr := c.run(ctx, "config_change", h); hookErr != nil {
		return c.settle(ctx, span, "config_change", StateError, hookErr)
	}
	return c.settle(ctx, span, "config_change", c.state, nil)
}

// Uninstall removes the plugin from StateInstalled or StateDisabled.
// Success lands back in StateUninstalled, from where Install may run
// again.
func (c *Controller) Uninstall(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.obs.start(ctx, "uninstall", c.man.Name, c.man.Version)
	if c.state != StateInstalled && c.state != StateDisabled {
		return c.reject(ctx, span, "uninstall")
	}

	if hookErr := c.run(ctx, "uninstall", c.hookFn(c.plug.Hooks().OnUninstall)); hookErr != nil {
		return c.settle(ctx, span, "uninstall", StateError, hookErr)
	}

	if c.tracked != nil {
		c.tracked.releaseAll()
	}
	return c.settle(ctx, span, "uninstall", StateUninstalled, nil)
}

// Destroy tears the plugin down for good: the disable and uninstall
// hooks run best-effort in whichever states apply, their errors are
// logged rather than returned, and the state always ends
// StateDestroyed. From StateError the plugin's internal state is
// unknown, so hooks are skipped and only host-side cleanup runs.
// Destroying an already-destroyed plugin is a no-op; destroying an
// uninstalled one is rejected.
func (c *Controller) Destroy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDestroyed {
		return nil
	}

	ctx, span := c.obs.start(ctx, "destroy", c.man.Name, c.man.Version)
	if c.state == StateUninstalled {
		return c.reject(ctx, span, "destroy")
	}

	if c.state == StateEnabled {
		if err := c.run(ctx, "disable", c.hookFn(c.plug.Hooks().OnDisable)); err != nil {
			c.logger.Warn("disable during destroy failed", slog.String("error", err.Error()))
		}
	}
	if c.state == StateEnabled || c.state == StateInstalled || c.state == StateDisabled {
		if err := c.run(ctx, "uninstall", c.hookFn(c.plug.Hooks().OnUninstall)); err != nil {
			c.logger.Warn("uninstall during destroy failed", slog.String("error", err.Error()))
		}
	}
	c.withdraw(ctx)

	return c.settle(ctx, span, "destroy", StateDestroyed, nil)
}

// Reset recovers a plugin from StateError back to StateUninstalled so
// Install can run again. The recorded error and the adapted plugin are
// dropped; the next Install re-adapts the original source.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateError {
		return fmt.Errorf("%w: cannot reset from %s", ErrInvalidTransition, c.state)
	}

	if c.tracked != nil {
		c.tracked.releaseAll()
	}
	c.state = StateUninstalled
	c.lastErr = nil
	c.adapted = nil
	c.plug = nil
	c.confSchema = nil
	c.rt = nil
	c.tracked = nil

	c.logger.Info("plugin reset", slog.String("to", StateUninstalled.String()))
	return nil
}

// HealthCheck probes the plugin's health, bounding the wait by
// timeout. A plugin without a health hook reads healthy; a hook result
// overdue past the timeout is forced to unhealthy with a "timeout"
// detail, and the probe's late result is dropped. Plugins in
// StateError, StateUninstalled, or StateDestroyed read unhealthy
// without their hook running.
//
// HealthCheck does not hold the transition lock while the hook runs,
// so a slow probe never delays lifecycle operations.
func (c *Controller) HealthCheck(ctx context.Context, timeout time.Duration) types.HealthStatus {
	c.mu.Lock()
	state := c.state
	lastErr := c.lastErr
	plug := c.plug
	rt := c.rt
	c.mu.Unlock()

	switch state {
	case StateUninstalled:
		return types.NewUnhealthyStatus("plugin is not installed", nil)
	case StateDestroyed:
		return types.NewUnhealthyStatus("plugin is destroyed", nil)
	case StateError:
		details := map[string]any{}
		if lastErr != nil {
			details["error"] = lastErr.Error()
		}
		return types.NewUnhealthyStatus("plugin is in error state", details)
	}

	h := plug.Hooks().HealthCheck
	if h == nil {
		return types.NewHealthyStatus("no health check declared")
	}

	hctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan types.HealthStatus, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				results <- types.NewUnhealthyStatus("health check panicked",
					map[string]any{"panic": fmt.Sprint(r)})
			}
		}()
		results <- h(hctx, rt)
	}()

	select {
	case status := <-results:
		return status
	case <-hctx.Done():
		return types.NewUnhealthyStatus("health check timed out",
			map[string]any{"timeout": timeout.String()})
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the error recorded by the most recent failed hook,
// or nil after a clean transition or a Reset.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Manifest returns the manifest the controller was built with.
func (c *Controller) Manifest() *manifest.Manifest {
	return c.man
}

// Plugin returns the adapted plugin, or nil before Install.
func (c *Controller) Plugin() plugin.Plugin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plug
}

// Adapted returns the adaptation result for the plugin, carrying the
// bridge's warnings, limitations, and polyfill requirements. Nil
// before Install, and bare (no warnings) for current-contract plugins.
func (c *Controller) Adapted() *compat.AdaptedPlugin {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapted
}

// InstanceID returns the identifier minted for the current enablement,
// or the empty string while the plugin is not enabled.
func (c *Controller) InstanceID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.instanceID
}

// hookFn shapes the plain four-hook signature for run. A nil hook
// yields nil, which run treats as a no-op.
func (c *Controller) hookFn(h func(context.Context, plugin.Runtime) error) func(context.Context) error {
	if h == nil {
		return nil
	}
	return func(ctx context.Context) error { return h(ctx, c.rt) }
}

// run invokes one hook, converting a panic into an error so a broken
// plugin lands in StateError instead of taking the host down.
func (c *Controller) run(ctx context.Context, op string, h func(context.Context) error) (err error) {
	if h == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s hook panicked: %v", op, r)
		}
	}()
	return h(ctx)
}

// settle finishes one attempted transition: it records the new state,
// stores or clears the hook error, logs the change, and closes the
// span. Cleanup done by the caller (as in Disable) has already run.
func (c *Controller) settle(ctx context.Context, span trace.Span, op string, to State, hookErr error) error {
	from := c.state
	c.state = to
	c.lastErr = hookErr

	if hookErr != nil {
		c.logger.Error("plugin hook failed",
			slog.String("operation", op),
			slog.String("from", from.String()),
			slog.String("to", to.String()),
			slog.String("error", hookErr.Error()))
		err := fmt.Errorf("%w: %s: %w", ErrHookFailed, op, hookErr)
		c.obs.end(ctx, span, op, outcomeError, to, err)
		return err
	}

	if from == to {
		c.logger.Debug("plugin transition complete", slog.String("operation", op))
	} else {
		c.logger.Info("plugin state changed",
			slog.String("operation", op),
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	}
	c.obs.end(ctx, span, op, outcomeSuccess, to, nil)
	return nil
}

// reject refuses a transition requested from an invalid source state.
// No hook runs and the state is unchanged.
func (c *Controller) reject(ctx context.Context, span trace.Span, op string) error {
	err := fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, op, c.state)
	c.obs.end(ctx, span, op, outcomeRejected, c.state, err)
	return err
}

// announce mints the instance id, registers the instance for
// discovery, and flips the health endpoint to serving. Registration
// failures are logged, not returned: the plugin is enabled regardless
// of whether the host's registry is reachable.
func (c *Controller) announce(ctx context.Context) {
	c.instanceID = uuid.NewString()

	if c.health != nil {
		c.health.SetServing(c.man.Name, true)
	}
	if c.instances == nil {
		return
	}

	info := registry.InstanceInfo{
		Name:       c.man.Name,
		Version:    c.man.Version,
		InstanceID: c.instanceID,
		State:      StateEnabled.String(),
		Endpoint:   c.endpoint,
		EnabledAt:  time.Now(),
	}
	if c.man.Type != "" {
		info.Metadata = map[string]string{"type": c.man.Type}
	}
	if err := c.instances.Register(ctx, info); err != nil {
		c.logger.Warn("instance registration failed", slog.String("error", err.Error()))
	}
}

// withdraw releases the plugin's event subscriptions, withdraws its
// registry entry, and flips the health endpoint to not-serving.
func (c *Controller) withdraw(ctx context.Context) {
	if c.tracked != nil {
		c.tracked.releaseAll()
	}
	if c.instances != nil && c.instanceID != "" {
		if err := c.instances.Deregister(ctx, c.man.Name, c.instanceID); err != nil {
			c.logger.Warn("instance deregistration failed", slog.String("error", err.Error()))
		}
	}
	c.instanceID = ""
	if c.health != nil {
		c.health.SetServing(c.man.Name, false)
	}
}

// contractVersion maps the manifest's declared schema version to the
// plugin contract version the adapter registry matches against. An
// absent manifest_version reads as current.
func contractVersion(m *manifest.Manifest) string {
	switch m.ManifestVersion {
	case 1:
		return "1.0.0"
	case 2:
		return "2.0.0"
	default:
		return version.Current
	}
}
