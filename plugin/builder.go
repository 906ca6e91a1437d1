package plugin

import (
	"context"
	"fmt"

	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/types"
)

// HookFunc is the signature shared by the install, uninstall, enable and
// disable hooks.
type HookFunc func(ctx context.Context, rt Runtime) error

// UpdateFunc is the signature of the update hook.
type UpdateFunc func(ctx context.Context, rt Runtime, oldVersion, newVersion string) error

// ConfigChangeFunc is the signature of the configuration change hook.
type ConfigChangeFunc func(ctx context.Context, rt Runtime, oldConfig, newConfig map[string]any) error

// HealthFunc is the signature of the health check hook.
type HealthFunc func(ctx context.Context, rt Runtime) types.HealthStatus

// Config holds the configuration for building a plugin.
// Use NewConfig to create a new configuration, then use the setter methods
// to configure the plugin before calling New to build it.
type Config struct {
	name         string
	version      string
	description  string
	hooks        Hooks
	configSchema *schema.JSON
}

// NewConfig creates a new plugin configuration with default values.
func NewConfig() *Config {
	return &Config{}
}

// SetName sets the plugin name.
func (c *Config) SetName(name string) {
	c.name = name
}

// SetVersion sets the plugin version.
func (c *Config) SetVersion(version string) {
	c.version = version
}

// SetDescription sets the plugin description.
func (c *Config) SetDescription(desc string) {
	c.description = desc
}

// SetConfigSchema sets the schema plugin configuration is validated against.
func (c *Config) SetConfigSchema(s schema.JSON) {
	c.configSchema = &s
}

// SetOnInstall sets the hook that runs when the plugin is installed.
func (c *Config) SetOnInstall(fn HookFunc) {
	c.hooks.OnInstall = fn
}

// SetOnUninstall sets the hook that runs when the plugin is removed.
func (c *Config) SetOnUninstall(fn HookFunc) {
	c.hooks.OnUninstall = fn
}

// SetOnEnable sets the hook that runs when the plugin is activated.
func (c *Config) SetOnEnable(fn HookFunc) {
	c.hooks.OnEnable = fn
}

// SetOnDisable sets the hook that runs when the plugin is deactivated.
func (c *Config) SetOnDisable(fn HookFunc) {
	c.hooks.OnDisable = fn
}

// SetOnUpdate sets the hook that runs when the plugin is updated to a new version.
func (c *Config) SetOnUpdate(fn UpdateFunc) {
	c.hooks.OnUpdate = fn
}

// SetOnConfigChange sets the hook that runs when the plugin's configuration changes.
func (c *Config) SetOnConfigChange(fn ConfigChangeFunc) {
	c.hooks.OnConfigChange = fn
}

// SetHealthCheck sets the hook that reports the plugin's health.
func (c *Config) SetHealthCheck(fn HealthFunc) {
	c.hooks.HealthCheck = fn
}

// New creates a new Plugin from the configuration.
// Returns an error if the configuration is invalid.
func New(cfg *Config) (Plugin, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.name == "" {
		return nil, fmt.Errorf("plugin name is required")
	}

	if cfg.version == "" {
		return nil, fmt.Errorf("plugin version is required")
	}

	return &sdkPlugin{
		name:         cfg.name,
		version:      cfg.version,
		description:  cfg.description,
		hooks:        cfg.hooks,
		configSchema: cfg.configSchema,
		descriptor:   Describe(cfg.name, cfg.version, cfg.description, cfg.hooks, cfg.configSchema != nil),
	}, nil
}

// sdkPlugin is the private implementation of the Plugin interface.
type sdkPlugin struct {
	name         string
	version      string
	description  string
	hooks        Hooks
	configSchema *schema.JSON
	descriptor   Descriptor
}

// Name returns the plugin's unique identifier.
func (p *sdkPlugin) Name() string {
	return p.name
}

// Version returns the plugin's semantic version.
func (p *sdkPlugin) Version() string {
	return p.version
}

// Description returns the plugin's description.
func (p *sdkPlugin) Description() string {
	return p.description
}

// Hooks returns the configured lifecycle hooks.
func (p *sdkPlugin) Hooks() Hooks {
	return p.hooks
}

// Capabilities returns the descriptor computed when the plugin was built.
func (p *sdkPlugin) Capabilities() Descriptor {
	return p.descriptor
}

// ConfigSchema returns the configured schema, or nil if none was set.
func (p *sdkPlugin) ConfigSchema() *schema.JSON {
	return p.configSchema
}
