package lifecycle

// State represents the lifecycle state of a plugin. Each plugin's state
// is owned by its Controller; nothing else mutates it.
type State int

const (
	// StateUninstalled indicates the plugin is known to the host but
	// not installed. Every controller starts here.
	StateUninstalled State = iota

	// StateInstalled indicates the install hook completed and the
	// plugin is ready to be enabled.
	StateInstalled

	// StateEnabled indicates the plugin is active and serving.
	StateEnabled

	// StateDisabled indicates the plugin was deactivated; it can be
	// re-enabled or uninstalled.
	StateDisabled

	// StateError indicates a lifecycle hook failed. The plugin stays
	// here until an explicit Reset.
	StateError

	// StateDestroyed indicates the plugin was torn down for good.
	// Terminal.
	StateDestroyed
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateUninstalled:
		return "uninstalled"
	case StateInstalled:
		return "installed"
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateError:
		return "error"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}
