package plugin

// Descriptor describes a plugin's metadata and declared hooks.
// It provides everything the host needs to reason about a plugin without
// invoking it: identity, plus one boolean per lifecycle hook. Descriptors
// are computed once, at build or adaptation time, never per call.
type Descriptor struct {
	// Name is the unique identifier for the plugin.
	Name string `json:"name"`

	// Version is the semantic version of the plugin.
	Version string `json:"version"`

	// Description provides a human-readable explanation of the plugin's purpose.
	Description string `json:"description"`

	// Hook presence flags.
	HasInstall      bool `json:"has_install"`
	HasUninstall    bool `json:"has_uninstall"`
	HasEnable       bool `json:"has_enable"`
	HasDisable      bool `json:"has_disable"`
	HasUpdate       bool `json:"has_update"`
	HasConfigChange bool `json:"has_config_change"`
	HasHealthCheck  bool `json:"has_health_check"`

	// HasConfigSchema indicates whether the plugin declares a configuration schema.
	HasConfigSchema bool `json:"has_config_schema"`
}

// Describe builds a Descriptor from plugin identity and hooks.
// Adapters use this to stamp the descriptor onto plugins they wrap.
func Describe(name, version, description string, h Hooks, hasSchema bool) Descriptor {
	return Descriptor{
		Name:            name,
		Version:         version,
		Description:     description,
		HasInstall:      h.OnInstall != nil,
		HasUninstall:    h.OnUninstall != nil,
		HasEnable:       h.OnEnable != nil,
		HasDisable:      h.OnDisable != nil,
		HasUpdate:       h.OnUpdate != nil,
		HasConfigChange: h.OnConfigChange != nil,
		HasHealthCheck:  h.HealthCheck != nil,
		HasConfigSchema: hasSchema,
	}
}

// ToDescriptor extracts a plugin's descriptor.
// Prefer Capabilities() on the plugin itself where available; this helper
// recomputes from the hooks for plugins built outside this package.
func ToDescriptor(p Plugin) Descriptor {
	return Describe(p.Name(), p.Version(), p.Description(), p.Hooks(), p.ConfigSchema() != nil)
}
