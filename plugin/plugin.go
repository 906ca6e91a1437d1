package plugin

import (
	"context"

	"github.com/atriumhq/sdk/schema"
	"github.com/atriumhq/sdk/types"
)

// Plugin is the interface for Atrium plugins.
// Plugins written against the current host contract implement it directly,
// usually through the builder in this package. Plugins written against older
// contracts are wrapped into it by a compatibility adapter before the host
// ever sees them.
type Plugin interface {
	// Name returns the unique identifier for the plugin.
	// This should be a short, kebab-case name (e.g., "markdown-notes").
	Name() string

	// Version returns the semantic version of the plugin.
	Version() string

	// Description returns a human-readable description of the plugin's purpose.
	Description() string

	// Hooks returns the lifecycle hooks the plugin responds to.
	// Absent hooks are nil and the host treats them as no-ops.
	Hooks() Hooks

	// Capabilities returns the plugin's hook descriptor.
	// The descriptor is computed once when the plugin is built, so callers
	// can branch on it without re-probing the hook functions.
	Capabilities() Descriptor

	// ConfigSchema returns the schema the host validates plugin configuration
	// against, or nil if the plugin declares none.
	ConfigSchema() *schema.JSON
}

// Hooks holds the lifecycle callbacks a plugin can provide.
// Every field is optional; a nil hook means the plugin does not participate
// in that transition.
type Hooks struct {
	// OnInstall runs once when the plugin is installed into the host.
	OnInstall func(ctx context.Context, rt Runtime) error

	// OnUninstall runs when the plugin is removed. It should release any
	// state the plugin created outside its own storage namespace.
	OnUninstall func(ctx context.Context, rt Runtime) error

	// OnEnable runs each time the plugin is activated.
	OnEnable func(ctx context.Context, rt Runtime) error

	// OnDisable runs each time the plugin is deactivated.
	OnDisable func(ctx context.Context, rt Runtime) error

	// OnUpdate runs when the host replaces one installed plugin version
	// with another.
	OnUpdate func(ctx context.Context, rt Runtime, oldVersion, newVersion string) error

	// OnConfigChange runs when the plugin's configuration changes while it
	// is enabled. Both the previous and the new configuration are provided
	// so the plugin can diff them.
	OnConfigChange func(ctx context.Context, rt Runtime, oldConfig, newConfig map[string]any) error

	// HealthCheck reports the plugin's current health.
	// Plugins without one are considered healthy.
	HealthCheck func(ctx context.Context, rt Runtime) types.HealthStatus
}
