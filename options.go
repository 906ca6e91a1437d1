package sdk

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/atriumhq/sdk/capability"
	"github.com/atriumhq/sdk/compat"
	"github.com/atriumhq/sdk/deprecation"
	"github.com/atriumhq/sdk/lifecycle"
	"github.com/atriumhq/sdk/plugin"
	"github.com/atriumhq/sdk/registry"
	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/types"
	"github.com/atriumhq/sdk/version"
)

// Option configures the Manager.
type Option func(*options)

// options holds configuration for the Manager instance.
type options struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	hostVersion   string
	detector      *version.Detector
	deprecations  *deprecation.Manager
	warningCap    int
	adapters      *compat.Registry
	capabilities  *capability.Registry
	instances     registry.Registry
	health        lifecycle.HealthReporter
	identity      types.Identity
	endpoint      string
}

// WithLogger sets a custom logger for the manager and everything it
// wires up. If not provided, a default JSON logger writing to stdout is
// created.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for distributed tracing.
// Every lifecycle transition runs under a span when one is configured.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMeterProvider sets an OpenTelemetry meter provider. When
// configured, the SDK records lifecycle transition and deprecation
// usage counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithHostVersion advertises the host application's version to the SDK,
// bypassing environment and capability probing. Hosts that embed their
// version at build time should always pass it.
func WithHostVersion(v string) Option {
	return func(o *options) {
		o.hostVersion = v
	}
}

// WithDetector injects a fully configured version detector, replacing
// the one New would build. WithHostVersion is ignored when a detector
// is injected.
func WithDetector(d *version.Detector) Option {
	return func(o *options) {
		o.detector = d
	}
}

// WithDeprecations injects a deprecation manager, replacing the default
// one. Useful when the host shares a single manager across several SDK
// entry points.
func WithDeprecations(m *deprecation.Manager) Option {
	return func(o *options) {
		o.deprecations = m
	}
}

// WithWarningCap bounds per-feature deprecation console output for the
// default deprecation manager. Ignored when WithDeprecations is used.
func WithWarningCap(n int) Option {
	return func(o *options) {
		o.warningCap = n
	}
}

// WithAdapters injects a compatibility adapter registry, replacing the
// standard v1/v2 catalog.
func WithAdapters(r *compat.Registry) Option {
	return func(o *options) {
		o.adapters = r
	}
}

// WithCapabilities injects the host's capability registry. Without it,
// New assembles one from in-memory defaults — fine for tests and
// single-process hosts, wrong for anything that must persist.
func WithCapabilities(r *capability.Registry) Option {
	return func(o *options) {
		o.capabilities = r
	}
}

// WithRegistry sets the instance registry enabled plugins announce
// themselves in. Hosts without one run undiscoverable, which is fine
// for single-node deployments.
func WithRegistry(r registry.Registry) Option {
	return func(o *options) {
		o.instances = r
	}
}

// WithHealthReporter connects the lifecycle to a health endpoint: each
// plugin's serving status flips as it enables and disables. The serve
// package's Server.Health() is the standard implementation.
func WithHealthReporter(h lifecycle.HealthReporter) Option {
	return func(o *options) {
		o.health = h
	}
}

// WithIdentity sets the user identity exposed to plugins through their
// runtime. Defaults to no identity (anonymous).
func WithIdentity(id types.Identity) Option {
	return func(o *options) {
		o.identity = id
	}
}

// WithEndpoint sets the address advertised in the instance registry for
// enabled plugins, typically the serve package's Server.Endpoint().
func WithEndpoint(addr string) Option {
	return func(o *options) {
		o.endpoint = addr
	}
}

// PluginOption configures a plugin under construction with NewPlugin.
type PluginOption func(*plugin.Config)

// WithPluginName sets the plugin's unique identifier.
// The name should be a kebab-case string (e.g., "markdown-notes").
func WithPluginName(name string) PluginOption {
	return func(c *plugin.Config) {
		c.SetName(name)
	}
}

// WithPluginVersion sets the plugin's semantic version.
// Should follow semantic versioning format (e.g., "1.0.0").
func WithPluginVersion(version string) PluginOption {
	return func(c *plugin.Config) {
		c.SetVersion(version)
	}
}

// WithPluginDescription sets the plugin's human-readable description.
// This should explain what the plugin does and its purpose.
func WithPluginDescription(desc string) PluginOption {
	return func(c *plugin.Config) {
		c.SetDescription(desc)
	}
}

// WithConfigSchema declares the schema the plugin's configuration must
// satisfy. Configuration changes are validated against it before the
// plugin's hook sees them.
func WithConfigSchema(s schema.JSON) PluginOption {
	return func(c *plugin.Config) {
		c.SetConfigSchema(s)
	}
}

// WithOnInstall sets the hook that runs when the plugin is installed.
func WithOnInstall(fn plugin.HookFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnInstall(fn)
	}
}

// WithOnUninstall sets the hook that runs when the plugin is uninstalled.
func WithOnUninstall(fn plugin.HookFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnUninstall(fn)
	}
}

// WithOnEnable sets the hook that runs when the plugin is enabled.
func WithOnEnable(fn plugin.HookFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnEnable(fn)
	}
}

// WithOnDisable sets the hook that runs when the plugin is disabled.
func WithOnDisable(fn plugin.HookFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnDisable(fn)
	}
}

// WithOnUpdate sets the hook that runs when the plugin is updated
// between versions. The hook receives both versions so it can migrate
// stored data.
func WithOnUpdate(fn plugin.UpdateFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnUpdate(fn)
	}
}

// WithOnConfigChange sets the hook that runs when the plugin's
// configuration changes. The hook receives both configurations so it
// can diff them.
func WithOnConfigChange(fn plugin.ConfigChangeFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetOnConfigChange(fn)
	}
}

// WithHealthCheck sets the hook that reports the plugin's health.
// If not set, an enabled plugin reads as healthy.
func WithHealthCheck(fn plugin.HealthFunc) PluginOption {
	return func(c *plugin.Config) {
		c.SetHealthCheck(fn)
	}
}
