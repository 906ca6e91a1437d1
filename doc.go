// Package sdk provides the official Software Development Kit for hosting
// Atrium plugins.
//
// The Atrium SDK lets a host application install, enable, disable, and
// remove plugins while staying compatible with plugins written against
// older API contracts. It provides lifecycle management with explicit
// state machines, capability injection for storage, events, and HTTP,
// compatibility adapters and polyfills for legacy plugins, deprecation
// tracking, and health reporting.
//
// # Core Concepts
//
// The SDK is organized around several key concepts:
//
//   - Plugins: extensions that hook into the host's lifecycle events
//   - Manifests: declarative plugin.yaml descriptors validated before any
//     plugin code runs
//   - Lifecycle: the uninstalled → installed → enabled ⇄ disabled state
//     machine, one controller per plugin
//   - Capabilities: the storage, events, and HTTP surface a plugin
//     reaches through its runtime
//   - Compatibility: adapters that bridge 1.x and 2.x plugins to the
//     current contract, and polyfills that fill capability gaps on older
//     hosts
//
// # Getting Started
//
// A host assembles a Manager, then installs plugins through it:
//
//	import "github.com/atriumhq/sdk"
//
//	host, err := sdk.New(
//	    sdk.WithLogger(logger),
//	    sdk.WithHostVersion("3.2.0"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Close()
//
//	ctrl, err := host.Install(ctx, myPlugin, manifest)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := host.Enable(ctx, "markdown-notes"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Plugin Development
//
// Plugins are built from hooks; every hook is optional:
//
//	p, err := sdk.NewPlugin(
//	    sdk.WithPluginName("markdown-notes"),
//	    sdk.WithPluginVersion("1.2.0"),
//	    sdk.WithOnEnable(func(ctx context.Context, rt plugin.Runtime) error {
//	        return rt.Storage().Set(ctx, "enabled_at", time.Now().Unix())
//	    }),
//	    sdk.WithHealthCheck(func(ctx context.Context, rt plugin.Runtime) types.HealthStatus {
//	        return types.NewHealthyStatus("notes folder reachable")
//	    }),
//	)
//
// Hooks receive a Runtime carrying the plugin's scoped logger, storage,
// event bus, HTTP client, and the current user identity. Legacy plugins
// (compat.PluginV1, compat.PluginV2) are installed the same way; the
// compatibility layer bridges them transparently and records their
// deprecated surface usage.
//
// # Error Handling
//
// The SDK uses sentinel errors and structured error types for robust
// error handling:
//
//	if err != nil {
//	    if errors.Is(err, sdk.ErrPluginNotFound) {
//	        // Handle unknown plugin
//	    }
//	    if errors.Is(err, lifecycle.ErrHookFailed) {
//	        // The plugin's own hook failed; the controller is in
//	        // StateError and can be Reset.
//	    }
//	}
//
// # Observability
//
// Lifecycle transitions run under OpenTelemetry spans and increment
// transition counters when a tracer or meter provider is configured:
//
//	host, err := sdk.New(
//	    sdk.WithTracer(tracerProvider.Tracer("my-host")),
//	    sdk.WithMeterProvider(meterProvider),
//	)
//
// The serve package adds a gRPC health endpoint whose per-plugin serving
// status follows the lifecycle.
//
// # Thread Safety
//
// All Manager methods are safe for concurrent use. Transitions for one
// plugin are serialized by its controller; different plugins proceed
// independently.
package sdk
