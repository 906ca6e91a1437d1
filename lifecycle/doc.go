// Package lifecycle drives plugins through their state machine.
//
// One Controller manages one plugin. The happy path is
//
//	Uninstalled → Installed → Enabled ⇄ Disabled → Uninstalled
//
// with StateDestroyed reachable from any installed state as a terminal
// teardown, and StateError entered whenever a lifecycle hook fails.
// Error is sticky: only an explicit Reset returns the plugin to
// Uninstalled for another install attempt.
//
// Install is where compatibility happens. The controller validates the
// manifest (translating 1.x dot-notation permissions first), picks a
// compatibility adapter when the manifest declares a legacy contract,
// installs the polyfills the host is missing, and only then lets the
// plugin's install hook run. By the time any plugin code executes, the
// capability surface it was written against is in place.
//
// Transitions on one controller are serialized by a mutex and each
// hook runs at most once per transition; requests from an invalid
// source state are rejected with ErrInvalidTransition before any hook
// runs. Hook failures are wrapped in ErrHookFailed with the original
// error preserved, recorded on the controller for LastError, and never
// leave the plugin silently half-transitioned.
//
// Each transition runs under an OpenTelemetry span and increments a
// transition counter labeled by operation and outcome when a tracer or
// meter is configured; state changes are logged through slog either
// way.
package lifecycle
