package compat

import "context"

// PluginV1 is the shape of a plugin written against the 1.x host
// contract. Plugins of that era were constructed with their
// configuration, exposed a single init/destroy pair, and declared
// permissions in dot notation (e.g. "network.access").
//
// The shape is declared explicitly rather than sniffed from function
// arity; a host loading a 1.x plugin constructs this struct from
// whatever loading mechanism it uses and hands it to the registry.
type PluginV1 struct {
	// Name is the plugin's unique identifier.
	Name string

	// Version is the plugin's own version (not the contract version).
	Version string

	// Description is an optional human-readable summary.
	Description string

	// Config is the configuration the plugin was constructed with.
	// 1.x plugins received it exactly once, through Init.
	Config map[string]any

	// Init runs once when the plugin is loaded. Optional.
	Init func(config map[string]any) error

	// Destroy runs when the plugin is removed. Optional.
	Destroy func() error

	// Permissions lists the plugin's requested permissions, typically
	// in the 1.x dot notation.
	Permissions []string
}

// PluginV2 is the shape of a plugin written against the 2.x host
// contract. The 2.x era introduced contexts and an activate/deactivate
// pair, but still predates update, config-change and health hooks.
type PluginV2 struct {
	// Name is the plugin's unique identifier.
	Name string

	// Version is the plugin's own version (not the contract version).
	Version string

	// Description is an optional human-readable summary.
	Description string

	// Config is the configuration passed to Initialize.
	Config map[string]any

	// Initialize runs once when the plugin is loaded. Optional.
	Initialize func(ctx context.Context, config map[string]any) error

	// Cleanup runs when the plugin is removed. Optional.
	Cleanup func(ctx context.Context) error

	// Activate runs each time the plugin is switched on. Optional.
	Activate func(ctx context.Context) error

	// Deactivate runs each time the plugin is switched off. Optional.
	Deactivate func(ctx context.Context) error

	// Permissions lists the plugin's requested permissions. 2.x plugins
	// already use the canonical kebab-case vocabulary.
	Permissions []string
}
